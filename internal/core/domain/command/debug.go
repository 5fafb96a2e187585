package command

import (
	"context"
	"fmt"
	"runtime"
	"runtime/metrics"
	"strings"
	"time"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// Debug replies with the state of the resize service: how long it has been up,
// which backends it dispatches to, how many workspaces are open and what the
// Go runtime currently holds.
type Debug struct {
	textSender port.TextSender
	processor  port.Processor
	scratch    port.ScratchPool
	started    time.Time
	command    string
}

func NewDebug(sender port.TextSender, processor port.Processor, scratch port.ScratchPool, started time.Time,
	command string) *Debug {
	return &Debug{textSender: sender, processor: processor, scratch: scratch, started: started, command: command}
}

func (d *Debug) GetCommand() string {
	return d.command
}

var runtimeSamples = []string{
	"/memory/classes/heap/objects:bytes",
	"/memory/classes/total:bytes",
}

type statusLine struct {
	label string
	value string
}

func (d *Debug) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", d.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	lines := d.report(time.Now())
	for _, line := range lines {
		l.Debug().Str(line.label, line.value).Msg("status")
	}

	if _, err := d.textSender.SendMessageReply(ctx, message, render(lines)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (d *Debug) report(now time.Time) []statusLine {
	samples := make([]metrics.Sample, len(runtimeSamples))
	for i, name := range runtimeSamples {
		samples[i].Name = name
	}
	metrics.Read(samples)

	sampled := func(i int) string {
		if samples[i].Value.Kind() != metrics.KindUint64 {
			return "n/a"
		}
		return humanize.IBytes(samples[i].Value.Uint64())
	}

	backends := d.processor.Backends()

	return []statusLine{
		{"uptime", now.Sub(d.started).Round(time.Second).String()},
		{"backends", fmt.Sprintf("%d (%s)", len(backends), strings.Join(backends, ", "))},
		{"active workspaces", fmt.Sprint(d.scratch.Active())},
		{"heap objects", sampled(0)},
		{"runtime total", sampled(1)},
		{"goroutines", fmt.Sprint(runtime.NumGoroutine())},
		{"runtime", fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)},
	}
}

func render(lines []statusLine) string {
	var b strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&b, "%s: %s\n", line.label, line.value)
	}
	return b.String()
}

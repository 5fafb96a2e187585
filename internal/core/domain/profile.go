package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Profile is a named set of request defaults.
type Profile struct {
	Name    string
	Target  Dimensions
	Format  Format
	Kernel  Kernel
	Quality int
}

var profiles = map[string]Profile{
	"classic": {Name: "classic", Target: Dimensions{Width: 800, Height: 600}, Format: JPEG,
		Kernel: Hanning, Quality: 80},
	"catalog": {Name: "catalog", Target: Dimensions{Width: 1000, Height: 1500}, Format: JPEG,
		Kernel: Hanning, Quality: 80},
}

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "classic"

func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: profile %q, expected one of %s", ErrInvalidOption, name,
			strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

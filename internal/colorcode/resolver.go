package colorcode

import (
	"fmt"
	"image/color"
	"net"
	"strings"
)

// Policy selects how missing or unusable color codes are filled in.
type Policy string

const (
	// PolicyBrand uses the brand green foreground and a transparent
	// background when a code is absent, and transparent black when a code is
	// present but unusable.
	PolicyBrand Policy = "brand"
	// PolicyRandom uses a random opaque color whenever a code is absent or
	// unusable.
	PolicyRandom Policy = "random"
)

// ParsePolicy validates a policy name from configuration.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyBrand, PolicyRandom:
		return p, nil
	case "":
		return PolicyBrand, nil
	default:
		return "", fmt.Errorf("invalid color fallback %q: must be brand or random", s)
	}
}

// Resolver picks the paint colors for a request.
type Resolver struct {
	Policy Policy
	// Random is consulted only under PolicyRandom. Nil uses a shared
	// clock-seeded generator.
	Random RandomColor
}

// NewResolver returns a Resolver for the policy and random source.
func NewResolver(policy Policy, random RandomColor) *Resolver {
	return &Resolver{Policy: policy, Random: random}
}

// Resolve returns the foreground and background colors for a request.
//
// The host, stripped of any port and of the ".baseDomain" suffix, wins when
// it is exactly 8 characters (two 4-digit codes) or 16 characters (two
// 8-digit codes). Otherwise the fg and bg query values are used; a nil
// pointer means the parameter was absent.
func (r *Resolver) Resolve(host, baseDomain string, queryFG, queryBG *string) (fg, bg color.NRGBA) {
	sub := Subdomain(host, baseDomain)
	switch len(sub) {
	case 8:
		return r.present(sub[0:4]), r.present(sub[4:8])
	case 16:
		return r.present(sub[0:8]), r.present(sub[8:16])
	}

	if queryFG != nil {
		fg = r.present(*queryFG)
	} else {
		fg = r.absent(BrandForeground)
	}
	if queryBG != nil {
		bg = r.present(*queryBG)
	} else {
		bg = r.absent(BrandBackground)
	}
	return fg, bg
}

// Subdomain strips the port and the base domain suffix from host.
func Subdomain(host, baseDomain string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if baseDomain == "" {
		return host
	}
	return strings.TrimSuffix(host, "."+baseDomain)
}

func (r *Resolver) present(code string) color.NRGBA {
	if c, ok := Decode(code); ok {
		return c
	}
	if r.Policy == PolicyRandom {
		return r.random()
	}
	return Transparent
}

func (r *Resolver) absent(brand color.NRGBA) color.NRGBA {
	if r.Policy == PolicyRandom {
		return r.random()
	}
	return brand
}

var defaultRand = NewRand(0)

func (r *Resolver) random() color.NRGBA {
	if r.Random == nil {
		return defaultRand.RandomColor()
	}
	return r.Random.RandomColor()
}

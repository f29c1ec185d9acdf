// Package style maps named style roles to concrete font descriptors.
package style

import (
	"errors"
	"fmt"
	"strings"
)

// Role names a style used by renderers.
type Role string

const (
	RoleTitle   Role = "title"
	RoleHeader  Role = "header"
	RoleBody    Role = "body"
	RoleCaption Role = "caption"
	RoleBrand   Role = "brand"
)

// Roles lists every role a Table must define.
var Roles = []Role{RoleTitle, RoleHeader, RoleBody, RoleCaption, RoleBrand}

// Color is an RGB color.
type Color struct {
	R uint8 `yaml:"r" json:"r"`
	G uint8 `yaml:"g" json:"g"`
	B uint8 `yaml:"b" json:"b"`
}

var (
	Black    = Color{}
	DarkGrey = Color{R: 64, G: 64, B: 64}
	Navy     = Color{R: 14, G: 42, B: 71}
)

// Descriptor is a resolved font style.
type Descriptor struct {
	Family string  `yaml:"family" json:"family"`
	Size   float64 `yaml:"size" json:"size"`
	Bold   bool    `yaml:"bold" json:"bold"`
	Italic bool    `yaml:"italic" json:"italic"`
	Color  Color   `yaml:"color" json:"color"`
}

// FontStyle returns the gofpdf-style "B", "I", "BI" or "" string.
func (d Descriptor) FontStyle() string {
	var b strings.Builder
	if d.Bold {
		b.WriteString("B")
	}
	if d.Italic {
		b.WriteString("I")
	}
	return b.String()
}

// Table is a fixed role -> descriptor mapping.
type Table map[Role]Descriptor

var errEmptyFamily = errors.New("style: empty font family")

// DefaultTable returns the built-in style table.
func DefaultTable() Table {
	return Table{
		RoleTitle:   {Family: "Helvetica", Size: 12, Bold: true, Color: Black},
		RoleHeader:  {Family: "Helvetica", Size: 9, Bold: true, Color: Black},
		RoleBody:    {Family: "Helvetica", Size: 9, Color: Black},
		RoleCaption: {Family: "Helvetica", Size: 7, Color: DarkGrey},
		RoleBrand:   {Family: "Helvetica", Size: 14, Bold: true, Color: Navy},
	}
}

// Merge returns a copy of t with non-zero override fields applied.
func (t Table) Merge(overrides map[Role]Descriptor) Table {
	merged := make(Table, len(t))
	for role, d := range t {
		merged[role] = d
	}
	for role, o := range overrides {
		base := merged[role]
		if o.Family != "" {
			base.Family = o.Family
		}
		if o.Size > 0 {
			base.Size = o.Size
		}
		if o.Bold {
			base.Bold = true
		}
		if o.Italic {
			base.Italic = true
		}
		if o.Color != (Color{}) {
			base.Color = o.Color
		}
		merged[role] = base
	}
	return merged
}

// Validate checks that every role is defined with a usable font.
func (t Table) Validate() error {
	for _, role := range Roles {
		d, ok := t[role]
		if !ok {
			return fmt.Errorf("style: role %q not defined", role)
		}
		if strings.TrimSpace(d.Family) == "" {
			return fmt.Errorf("%w for role %q", errEmptyFamily, role)
		}
		if d.Size <= 0 {
			return fmt.Errorf("style: non-positive size for role %q", role)
		}
	}
	return nil
}

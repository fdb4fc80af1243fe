package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/domain"
)

// Wind category thresholds in knots (Saffir-Simpson plus TS/TD).
const (
	catFiveWind  = 137
	catFourWind  = 113
	catThreeWind = 96
	catTwoWind   = 83
	catOneWind   = 64
	stormWind    = 34
)

// AtcfFormatter renders ATCF deck updates. The interesting part is the
// heading: it compares the newest record against the previous advisory to
// announce genesis, invests, formations, dissipations, and category changes.
type AtcfFormatter struct{}

func (f *AtcfFormatter) Format(update domain.FileUpdate) (string, error) {
	if len(update.JSON) == 0 {
		return "", nil
	}

	var file domain.AtcfFile
	if err := json.Unmarshal(update.JSON, &file); err != nil {
		return "", fmt.Errorf("decode atcf payload: %w", err)
	}

	c := file.Current()
	if c == nil {
		return "", nil
	}

	lines := []string{
		f.heading(&file),
		classificationLine(c),
		positionLine(c),
		windLine(c),
		pInt("Psur: ", c.MinSeaLevelPsur, "mb"+pInt(" - ", c.OuterPsur, "mb")+pInt(" @ ", c.OuterRad, "nmi")),
		pStr("Depth: ", c.Depth, ""),
		windRadiiLine(c),
	}
	lines = append(lines, quadrantDiagram(c)...)
	if !c.Date.IsZero() {
		lines = append(lines, "Date Time: "+issueDate(c.Date.Time))
	}

	// Skipping empty lines keeps the fixed layout compact when optional
	// fields are absent.
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// heading derives the announcement line. Rules are evaluated top to bottom
// and the first match wins; the ordering is deliberate (a rename outranks a
// classification change) and must not be rearranged.
func (f *AtcfFormatter) heading(file *domain.AtcfFile) string {
	c := file.Current()
	if c == nil {
		return ""
	}

	// A single-record deck is a brand new genesis area, whatever else the
	// record carries.
	if len(file.Data) == 1 {
		return fmt.Sprintf("# New ATCF Genesis %s-GEN%d!", c.Basin, c.GenNo)
	}

	if c.Invest != nil {
		return fmt.Sprintf("# Spawn Invest %s-GEN%d => %s%s!", c.Basin, c.GenNo, c.Basin, c.Invest.To.ID)
	}

	p := file.Previous()

	if c.Trans != nil || (p != nil && p.Name != c.Name) {
		return fmt.Sprintf("# %s %s has formed in the %s!", c.Level, c.Name, c.Basin)
	}

	if c.Diss != nil {
		return fmt.Sprintf("# %s has dissipated.", c.Name)
	}

	if p != nil {
		lastCat := WindCategory(p.MaxSusWind)
		currentCat := WindCategory(c.MaxSusWind)
		if lastCat != currentCat {
			return fmt.Sprintf("# %s now a %s", c.Name, currentCat)
		}
	}

	if p != nil && p.Level != c.Level {
		return fmt.Sprintf("# %s now classified %s", c.Name, c.Level)
	}

	return fmt.Sprintf("*ATCF Update for %s %s*", c.Basin, displayName(c))
}

// WindCategory maps a sustained wind speed in knots to its intensity
// category. An absent speed has no category.
func WindCategory(susWind *int) string {
	if susWind == nil {
		return ""
	}
	switch v := *susWind; {
	case v >= catFiveWind:
		return "CAT5"
	case v >= catFourWind:
		return "CAT4"
	case v >= catThreeWind:
		return "CAT3"
	case v >= catTwoWind:
		return "CAT2"
	case v >= catOneWind:
		return "CAT1"
	case v >= stormWind:
		return "TS"
	default:
		return "TD"
	}
}

// displayName substitutes a readable invest label for the parser's INVEST
// placeholder so bulletins read "Invest AL95" instead of "INVEST".
func displayName(c *domain.AtcfRecord) string {
	if c.Name == domain.InvestName && c.Invest != nil {
		return fmt.Sprintf("Invest %s%s", c.Basin, c.Invest.To.ID)
	}
	return c.Name
}

func classificationLine(c *domain.AtcfRecord) string {
	cat := WindCategory(c.MaxSusWind)
	if cat == "TD" {
		cat = ""
	}
	return fmt.Sprintf("%s %s%s", c.Level, displayName(c), pStr(" - ", cat, ""))
}

func positionLine(c *domain.AtcfRecord) string {
	if c.Lat == nil || c.Lon == nil {
		return ""
	}
	return fmt.Sprintf("Pos: %.1f %.1f", *c.Lat, *c.Lon)
}

func windLine(c *domain.AtcfRecord) string {
	if c.MaxSusWind == nil {
		return ""
	}
	return fmt.Sprintf("Wind: %dkt%s%s", *c.MaxSusWind,
		pInt(" / ", c.WindGust, "kt"),
		pInt(" @ ", c.MaxWindRad, "nmi"))
}

func windRadiiLine(c *domain.AtcfRecord) string {
	if c.WindRad == nil {
		return ""
	}
	var ne *int
	if c.WindRad.Code == domain.RadiiAsymmetric {
		ne = c.WindRad.NE
	}
	return pInt("Wind Radi: ", c.WindRad.Rad, "kt"+pInt(" @ ", ne, "nmi"))
}

// quadrantDiagram renders the four-quadrant wind radii with the eye diameter
// in the middle, right-aligned to keep the columns stable.
func quadrantDiagram(c *domain.AtcfRecord) []string {
	if c.WindRad == nil || c.WindRad.Code != domain.RadiiQuadrant {
		return nil
	}
	return []string{
		fmt.Sprintf("%3dkt ------ %3dkt", orZero(c.WindRad.NW), orZero(c.WindRad.NE)),
		fmt.Sprintf("       %2dnmi", orZero(c.EyeDia)),
		fmt.Sprintf("%3dkt ------ %3dkt", orZero(c.WindRad.SW), orZero(c.WindRad.SE)),
	}
}

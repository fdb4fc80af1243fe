package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/domain"
)

// sevenDayBoldThreshold bolds an area's line once formation looks likely.
const sevenDayBoldThreshold = 70

// knownBasins fixes the rendering order; the NHC publishes these three.
// Unexpected basin keys render after them in sorted order.
var knownBasins = []string{"atlantic", "eastPacific", "centralPacific"}

// TwoFormatter renders the Tropical Weather Outlook as a per-basin summary
// of watched disturbance areas.
type TwoFormatter struct{}

func (f *TwoFormatter) Format(update domain.FileUpdate) (string, error) {
	if len(update.JSON) == 0 {
		return "", nil
	}

	var file domain.TwoFile
	if err := json.Unmarshal(update.JSON, &file); err != nil {
		return "", fmt.Errorf("decode two payload: %w", err)
	}
	if file.Basins == nil {
		return "", nil
	}

	var body strings.Builder
	var issued time.Time
	var counts []string
	total := 0

	for _, name := range basinOrder(file.Basins) {
		basin := file.Basins[name]
		body.WriteString("__**" + basinTitle(name) + "**__\n")

		if issued.IsZero() && basin != nil && basin.IssuedOn != nil {
			issued = basin.IssuedOn.ISO.Time
		}

		if basin == nil || len(basin.Areas) == 0 {
			body.WriteString("None\n\n")
			continue
		}

		counts = append(counts, fmt.Sprintf("%s (%d)", basinCode(name), len(basin.Areas)))
		total += len(basin.Areas)

		for i, area := range basin.Areas {
			bold := ""
			if area.SevenDay != nil && area.SevenDay.Chance > sevenDayBoldThreshold {
				bold = "**"
			}
			id := ""
			if area.ID != "" {
				id = "(" + area.ID + ") "
			}
			fmt.Fprintf(&body, "%d: %s%s%% / %s%%%s - %s%s\n",
				i+1, bold, chance(area.TwoDay), chance(area.SevenDay), bold, id, area.Title)
		}
		body.WriteString("\n")
	}

	head := "### TWO Update: "
	if total == 0 {
		head += "No Activity"
	} else {
		head += strings.Join(counts, " - ")
	}
	head += "\n\n"

	if issued.IsZero() {
		issued = update.File.LastModified.Time
	}
	footer := ""
	if !issued.IsZero() {
		footer = "-# Issued for " + issueDate(issued)
	}

	return head + body.String() + footer, nil
}

// chance renders a formation probability zero-padded to two digits, or "??"
// when the outlook is unknown.
func chance(o *domain.Outlook) string {
	if o == nil {
		return "??"
	}
	return fmt.Sprintf("%02d", o.Chance)
}

func basinOrder(basins map[string]*domain.TwoBasin) []string {
	order := make([]string, 0, len(basins))
	seen := make(map[string]bool, len(basins))
	for _, name := range knownBasins {
		if _, ok := basins[name]; ok {
			order = append(order, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range basins {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

func basinTitle(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func basinCode(name string) string {
	if strings.EqualFold(name, "atlantic") {
		return "AL"
	}
	return "PA"
}

// Preview is an offline dry run of the roulette: it draws groups from fake
// (or provided) names and renders the result as a table, without touching
// the chat platform or the calendar.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"roulette-lab/domain"
)

func main() {
	total := flag.Int("n", 10, "number of generated participants")
	targetSize := flag.Int("size", 3, "target group size")
	seed := flag.Uint64("seed", 0, "fixed seed (0 means random)")
	names := flag.String("names", "", "comma-separated names (overrides -n)")
	flag.Parse()

	participants := makeParticipants(*total, *names)

	roulette := domain.NewRoulette()
	if *seed != 0 {
		roulette = domain.NewSeededRoulette(*seed, *seed)
	}

	groups, err := roulette.Draw(participants, *targetSize)
	if err != nil {
		log.Fatalf("Draw failed: %v", err)
	}
	if len(groups) == 0 {
		log.Fatal("Not enough participants for a draw (need at least 2)")
	}

	header := fmt.Sprintf("  ====== Roulette preview: %d participants, target %d ======",
		len(participants), *targetSize)
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Group", "Size", "Members"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for i, group := range groups {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", group.Size()),
			strings.Join(group.MemberNames(), ", "),
		})
	}
	table.Render()
}

func makeParticipants(total int, names string) []domain.Participant {
	if names != "" {
		var out []domain.Participant
		for i, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			out = append(out, domain.Participant{
				ID:   fmt.Sprintf("U%03d", i),
				Name: name,
			})
		}
		return out
	}

	out := make([]domain.Participant, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, domain.Participant{
			ID:   fmt.Sprintf("U%03d", i),
			Name: fmt.Sprintf("user-%03d", i),
		})
	}
	return out
}

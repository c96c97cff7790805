package exports

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dragx/internal/archive"
	"github.com/julianstephens/dragx/internal/board"
	"github.com/julianstephens/dragx/internal/cli"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	collideStyle  = cellStyle.Foreground(lipgloss.Color("214"))
	tableBorder   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	collisionNote = "~ marks a name already taken; the archive stores it under the shown name"
)

// PlanCmd prints the export manifest without writing anything
type PlanCmd struct {
	cli.BoardOptions `embed:""`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Prepare(c.BoardOptions)
	if err != nil {
		return err
	}

	entries := sess.Board.BuildExportManifest(sess.Prefix)
	if len(entries) == 0 {
		fmt.Fprintln(ctx.Out(), "No photos on the board")
		return nil
	}

	names := archive.Deduplicate(entries)
	rows := make([][]string, 0, len(entries))
	var total int64
	for i, e := range entries {
		slot, _ := sess.Board.Slot(e.SlotID)
		total += int64(len(e.Data))
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			slot.ID,
			slot.Content.File.Name,
			names[i],
			humanize.Bytes(uint64(len(e.Data))),
		})
	}
	renamed := make(map[int]bool)
	for i, e := range entries {
		if names[i] != e.Name {
			renamed[i] = true
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorder).
		Headers("#", "SLOT", "FILE", "EXPORT NAME", "SIZE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3 && renamed[row]:
				return collideStyle
			default:
				return cellStyle
			}
		})

	fmt.Fprintln(ctx.Out(), t)
	fmt.Fprintf(ctx.Out(), "%d of %d slots filled, %s total\n", sess.Board.CountFilled(), sess.Board.Len(), humanize.Bytes(uint64(total)))
	if dups := board.Collisions(entries); len(dups) > 0 {
		fmt.Fprintf(ctx.Out(), "%d duplicate name(s): %s\n", len(dups), collisionNote)
	}
	return nil
}

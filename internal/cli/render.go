package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize/english"

	"github.com/roach88/rmcat/internal/catalog"
)

const emptyCell = "-"

// ListResult is one or more consecutive pages of a listing or search.
type ListResult[T any] struct {
	Entity    catalog.Entity `json:"entity"`
	Query     string         `json:"query,omitempty"`
	FirstPage int            `json:"first_page"`
	LastPage  int            `json:"last_page"`
	Source    catalog.Source `json:"source"`
	Count     int            `json:"count"`
	Items     []T            `json:"items"`
}

// RenderText writes a title, a table of the items and a count.
func (r ListResult[T]) RenderText(w io.Writer) error {
	title := pluralTitle(r.Entity)
	if r.Query != "" {
		title += fmt.Sprintf(" matching %q", r.Query)
	}
	if r.LastPage > r.FirstPage {
		title += fmt.Sprintf(", pages %d-%d", r.FirstPage, r.LastPage)
	} else {
		title += fmt.Sprintf(", page %d", r.FirstPage)
	}
	fmt.Fprintf(w, "%s (source: %s)\n", title, r.Source)

	header, rows := table(r.Items)
	if err := writeTable(w, header, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, english.Plural(len(r.Items), string(r.Entity), ""))
	return err
}

// DetailResult is a single item.
type DetailResult[T any] struct {
	Entity catalog.Entity `json:"entity"`
	ID     int            `json:"id"`
	Source catalog.Source `json:"source"`
	Item   T              `json:"item"`
}

// RenderText writes a title and one labeled line per field.
func (r DetailResult[T]) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "%s #%d (source: %s)\n", r.Entity.Title(), r.ID, r.Source)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range fields(r.Item) {
		fmt.Fprintf(tw, "%s:\t%s\n", f[0], cell(f[1]))
	}
	return tw.Flush()
}

func pluralTitle(e catalog.Entity) string {
	return e.Title() + strings.TrimPrefix(e.Plural(), string(e))
}

// table returns the column headers and rows for a slice of catalog items.
func table(items any) ([]string, [][]string) {
	var rows [][]string
	switch items := items.(type) {
	case []catalog.Character:
		for _, c := range items {
			rows = append(rows, []string{
				strconv.Itoa(c.ID), c.Name, string(c.Status), c.Species, string(c.Gender), c.Location.Name,
			})
		}
		return []string{"ID", "NAME", "STATUS", "SPECIES", "GENDER", "LOCATION"}, rows
	case []catalog.Location:
		for _, l := range items {
			rows = append(rows, []string{
				strconv.Itoa(l.ID), l.Name, l.Type, l.Dimension, strconv.Itoa(len(l.Residents)),
			})
		}
		return []string{"ID", "NAME", "TYPE", "DIMENSION", "RESIDENTS"}, rows
	case []catalog.Episode:
		for _, e := range items {
			rows = append(rows, []string{
				strconv.Itoa(e.ID), e.Code, e.Name, e.AirDate, strconv.Itoa(len(e.Characters)),
			})
		}
		return []string{"ID", "CODE", "NAME", "AIR DATE", "CHARACTERS"}, rows
	}
	return nil, nil
}

// fields returns label/value pairs for one catalog item.
func fields(item any) [][2]string {
	switch it := item.(type) {
	case catalog.Character:
		return [][2]string{
			{"Name", it.Name},
			{"Status", string(it.Status)},
			{"Species", it.Species},
			{"Type", it.Type},
			{"Gender", string(it.Gender)},
			{"Origin", it.Origin.Name},
			{"Location", it.Location.Name},
			{"Episodes", strconv.Itoa(len(it.Episodes))},
			{"Created", it.Created},
		}
	case catalog.Location:
		return [][2]string{
			{"Name", it.Name},
			{"Type", it.Type},
			{"Dimension", it.Dimension},
			{"Residents", strconv.Itoa(len(it.Residents))},
			{"Created", it.Created},
		}
	case catalog.Episode:
		return [][2]string{
			{"Name", it.Name},
			{"Code", it.Code},
			{"Air date", it.AirDate},
			{"Characters", strconv.Itoa(len(it.Characters))},
			{"Created", it.Created},
		}
	}
	return nil
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeRow(tw, header)
	for _, row := range rows {
		writeRow(tw, row)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = cell(c)
	}
	fmt.Fprintln(w, strings.Join(out, "\t"))
}

func cell(s string) string {
	if strings.TrimSpace(s) == "" {
		return emptyCell
	}
	return s
}

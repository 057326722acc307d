package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
	"github.com/kailas-cloud/jsonidx/internal/repository/suggest"
	"github.com/kailas-cloud/jsonidx/internal/usecase/workflow"
)

func printOutcome(out *workflow.Outcome) {
	pterm.DefaultSection.Println("run " + out.RunID)
	printIndexInfo(out.Index, out.IndexErr)
	pterm.Info.Printfln("loaded %d documents in %d batches (%s)",
		out.Load.Documents, out.Load.Batches, out.Load.Duration.Round(time.Millisecond))

	for _, s := range out.Searches {
		pterm.DefaultSection.WithLevel(2).Println(s.Name)
		if s.Err != nil {
			pterm.Error.Println(s.Err.Error())
			continue
		}
		pterm.Info.Printfln("%s  total=%d", s.Request.Predicate, s.Page.Total)
		renderTable(pageTable(s.Page))
	}

	pterm.DefaultSection.WithLevel(2).Println("aggregation")
	if out.Aggregation.Err != nil {
		pterm.Error.Println(out.Aggregation.Err.Error())
	} else {
		renderTable(aggregationTable(out.Aggregation.Result))
	}

	if len(out.Suggestions) > 0 {
		pterm.DefaultSection.WithLevel(2).Println("autocomplete")
		for _, s := range out.Suggestions {
			if s.Err != nil {
				pterm.Error.Printfln("%q: %s", s.Prefix, s.Err)
				continue
			}
			pterm.Info.Printfln("prefix %q", s.Prefix)
			renderTable(suggestionTable(s.Suggestions))
		}
	}
}

func printIndexInfo(info *db.IndexInfo, err error) {
	if err != nil {
		pterm.Warning.Println(err.Error())
	}
	if info == nil {
		return
	}
	renderTable(pterm.TableData{
		{"index", "docs", "indexed", "failures"},
		{info.Name, strconv.FormatInt(info.NumDocs, 10),
			fmt.Sprintf("%.0f%%", info.PercentIndexed*100), strconv.FormatInt(info.IndexingFailures, 10)},
	})
}

// pageTable renders one row per hit. Columns follow the first hit's
// projection order; multi-value fields are joined with commas.
func pageTable(p result.Page) pterm.TableData {
	header := []string{"key"}
	seen := map[string]bool{}
	for _, d := range p.Documents {
		for _, f := range d.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				header = append(header, f.Name)
			}
		}
	}

	data := pterm.TableData{header}
	for _, d := range p.Documents {
		row := make([]string, len(header))
		row[0] = d.Key
		for i, name := range header[1:] {
			if f, ok := d.Get(name); ok {
				row[i+1] = strings.Join(f.Values, ", ")
			}
		}
		data = append(data, row)
	}
	return data
}

func aggregationTable(a result.Aggregation) pterm.TableData {
	cols := map[string]bool{}
	for _, r := range a.Rows {
		for k := range r {
			cols[k] = true
		}
	}
	header := make([]string, 0, len(cols))
	for k := range cols {
		header = append(header, k)
	}
	sort.Strings(header)

	data := pterm.TableData{header}
	for _, r := range a.Rows {
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = r[k]
		}
		data = append(data, row)
	}
	return data
}

func suggestionTable(ss []suggest.Suggestion) pterm.TableData {
	data := pterm.TableData{{"term", "score"}}
	for _, s := range ss {
		data = append(data, []string{s.Term, strconv.FormatFloat(s.Score, 'f', 2, 64)})
	}
	return data
}

func renderTable(data pterm.TableData) {
	if len(data) <= 1 {
		pterm.Info.Println("no results")
		return
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/sqlq"
	"github.com/pthm/sqlq/internal/cli"
)

var renderFlags struct {
	from       []string
	selects    []string
	selectAs   []string
	wheres     []string
	groupBys   []string
	orderBys   []string
	limit      int
	offset     int
	distinct   bool
	distinctOn string
	format     string
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a SELECT statement and its bound parameters",
	Long: `Render a SELECT statement and its bound parameters.

Sources, selections, and conditions repeat in declaration order:

  sqlq render --from u=public.user \
      --select u.id --select u.name \
      --where u__org_id=42 --where u__name__startswith=John \
      --order-by -u.id --limit 10

Where values parse as int, float, or bool when they look like one; quote with
single quotes to force text ('42').`,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringArrayVar(&renderFlags.from, "from", nil, "aliased source as alias=table (repeatable, at least one)")
	f.StringArrayVar(&renderFlags.selects, "select", nil, "column expression to select (repeatable)")
	f.StringArrayVar(&renderFlags.selectAs, "select-as", nil, "aliased selection as alias=expression (repeatable)")
	f.StringArrayVar(&renderFlags.wheres, "where", nil, "condition as [table__]column[__lookup]=value (repeatable)")
	f.StringArrayVar(&renderFlags.groupBys, "group-by", nil, "GROUP BY entry (repeatable)")
	f.StringArrayVar(&renderFlags.orderBys, "order-by", nil, "ORDER BY entry; prefix with - for DESC (repeatable)")
	f.IntVar(&renderFlags.limit, "limit", -1, "LIMIT bound")
	f.IntVar(&renderFlags.offset, "offset", -1, "OFFSET bound")
	f.BoolVar(&renderFlags.distinct, "distinct", false, "SELECT DISTINCT")
	f.StringVar(&renderFlags.distinctOn, "distinct-on", "", "SELECT DISTINCT ON(column)")
	f.StringVar(&renderFlags.format, "format", "", "output format: text or json (default from config)")
}

func runRender(cmd *cobra.Command, args []string) error {
	q, err := buildQuery()
	if err != nil {
		return cli.RenderError("building query", err)
	}

	text, vals, err := q.SQL()
	if err != nil {
		return cli.RenderError("rendering query", err)
	}

	format := cfg.Format
	if renderFlags.format != "" {
		format = renderFlags.format
	}

	out := cmd.OutOrStdout()
	switch format {
	case cli.FormatJSON:
		payload := struct {
			SQL    string `json:"sql"`
			Values []any  `json:"values"`
		}{SQL: text, Values: vals}
		if payload.Values == nil {
			payload.Values = []any{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case cli.FormatText:
		fmt.Fprintln(out, text)
		if cfg.Render.ShowValues {
			for i, v := range vals {
				fmt.Fprintf(out, "-- $%d = %v\n", i+1, v)
			}
		}
		return nil
	}
	return cli.ConfigError(fmt.Sprintf("invalid format %q", format), nil)
}

// buildQuery assembles a Query from the render flags, in flag declaration
// order per clause.
func buildQuery() (sqlq.Query, error) {
	if len(renderFlags.from) == 0 {
		return sqlq.Query{}, fmt.Errorf("at least one --from alias=table is required")
	}

	var q sqlq.Query
	for i, arg := range renderFlags.from {
		alias, table, err := cli.SplitKV(arg)
		if err != nil {
			return sqlq.Query{}, fmt.Errorf("--from: %w", err)
		}
		if i == 0 {
			q = sqlq.From(alias, table)
		} else {
			q = q.Source(alias, table)
		}
	}

	if len(renderFlags.selects) > 0 {
		q = q.Select(renderFlags.selects...)
	}
	for _, arg := range renderFlags.selectAs {
		alias, expr, err := cli.SplitKV(arg)
		if err != nil {
			return sqlq.Query{}, fmt.Errorf("--select-as: %w", err)
		}
		q = q.SelectAs(expr, alias)
	}

	for _, arg := range renderFlags.wheres {
		key, raw, err := cli.SplitKV(arg)
		if err != nil {
			return sqlq.Query{}, fmt.Errorf("--where: %w", err)
		}
		q = q.Where(key, cli.ParseValue(raw))
	}

	if len(renderFlags.groupBys) > 0 {
		q = q.GroupBy(renderFlags.groupBys...)
	}
	if len(renderFlags.orderBys) > 0 {
		q = q.OrderBy(renderFlags.orderBys...)
	}
	if renderFlags.limit >= 0 {
		q = q.Limit(renderFlags.limit)
	}
	if renderFlags.offset >= 0 {
		q = q.Offset(renderFlags.offset)
	}
	if renderFlags.distinctOn != "" {
		q = q.DistinctOn(renderFlags.distinctOn)
	} else if renderFlags.distinct {
		q = q.Distinct()
	}

	return q, nil
}

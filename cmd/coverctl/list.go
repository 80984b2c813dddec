package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

type listOptions struct {
	search   string
	sort     string
	desc     bool
	page     int
	pageSize int
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Show one page of an entity table",
		Example: `  coverctl list members --search amina
  coverctl list claims --sort amount --desc --page 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ent, err := core.Lookup(args[0])
			if err != nil {
				return err
			}

			st := ent.NewTableState(a.service.PageSize())
			if err := opts.apply(&st, ent, a.service.ClampPageSize); err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			view, err := a.service.TableView(ctx, client, ent.Key, &st)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), renderView(view, ent.StatusField, a.service.Theme(), !a.noColor))
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.search, "search", "s", "", "case-insensitive search across columns")
	f.StringVar(&opts.sort, "sort", "", "sort by this column key")
	f.BoolVar(&opts.desc, "desc", false, "sort descending")
	f.IntVarP(&opts.page, "page", "p", 1, "page number")
	f.IntVar(&opts.pageSize, "page-size", 0, "rows per page (default from TABLE_PAGE_SIZE)")
	return cmd
}

// apply turns the flags into table state transitions.
func (o listOptions) apply(st *table.State, ent core.Entity, clamp func(int) int) error {
	st.SetSearch(o.search)
	if o.pageSize > 0 {
		st.SetPageSize(clamp(o.pageSize))
	}
	if o.sort != "" {
		col, ok := findColumn(ent, o.sort)
		if !ok {
			return fmt.Errorf("unknown column %q for %s", o.sort, ent.Key)
		}
		if !col.Sortable {
			return fmt.Errorf("column %q is not sortable", o.sort)
		}
		dir := table.Asc
		if o.desc {
			dir = table.Desc
		}
		st.SetSort(o.sort, dir)
	}
	st.SetPage(o.page)
	return nil
}

func findColumn(ent core.Entity, key string) (table.Column, bool) {
	for _, c := range ent.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return table.Column{}, false
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/partnercenter/internal/constants"
	"github.com/fivetwenty-io/partnercenter/pkg/partner"
	"github.com/fivetwenty-io/partnercenter/pkg/partnerclient"
)

// ErrFilterIncomplete is returned when only one of the filter flags is set.
var ErrFilterIncomplete = errors.New("--filter-field and --filter-value must be used together")

type listOptions struct {
	size        int
	offset      int
	seek        bool
	all         bool
	filterField string
	filterValue string
	filterOp    string
	columns     []string
}

func (o *listOptions) filter() (*partner.Filter, error) {
	if o.filterField == "" && o.filterValue == "" {
		return nil, nil //nolint:nilnil // no filter requested
	}

	if o.filterField == "" || o.filterValue == "" {
		return nil, ErrFilterIncomplete
	}

	return &partner.Filter{Field: o.filterField, Value: o.filterValue, Operator: o.filterOp}, nil
}

func newListCommand(a *app) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list PATH",
		Short: "List a collection",
		Long: `List the collection at an API path.

Offset based collections such as /v1/invoices are paged with --size and --offset.
Collections paged with continuation tokens, such as /v1/customers, need --seek.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.filter()
			if err != nil {
				return err
			}

			client, cleanup, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			var pages *partner.PageEnumerator[resource]

			if opts.seek {
				pages, err = partnerclient.ListSeek[resource](cmd.Context(), client, args[0], opts.size)
			} else {
				pages, err = partnerclient.ListOffset[resource](cmd.Context(), client, args[0], opts.size, opts.offset, filter)
			}

			if err != nil {
				return err
			}

			items, total, err := a.collect(cmd.Context(), pages, opts.all)
			if err != nil {
				return err
			}

			structured, err := writeStructured(a.stdout, a.cfg.Output, partner.ResourceCollection[resource]{
				TotalCount: total,
				Items:      items,
			})
			if structured || err != nil {
				return err
			}

			if len(items) == 0 {
				_, _ = io.WriteString(a.stdout, "No items found\n")

				return nil
			}

			return writeRows(a.stdout, items, opts.columns)
		},
	}

	cmd.Flags().IntVar(&opts.size, "size", constants.DefaultPageSize, "items per page")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "index of the first item (offset based collections)")
	cmd.Flags().BoolVar(&opts.seek, "seek", false, "page with continuation tokens")
	cmd.Flags().BoolVar(&opts.all, "all", false, "fetch every page")
	cmd.Flags().StringVar(&opts.filterField, "filter-field", "", "field to filter on (offset based collections)")
	cmd.Flags().StringVar(&opts.filterValue, "filter-value", "", "value the filter field must match")
	cmd.Flags().StringVar(&opts.filterOp, "filter-operator", partner.FilterOperatorEquals, "filter operator (equals, starts_with, substring)")
	cmd.Flags().StringSliceVar(&opts.columns, "columns", nil, "table columns, dots select nested fields")

	return cmd
}

// collect returns the current page, or every page when all is set. The total is the count the
// service reported for the collection.
func (a *app) collect(ctx context.Context, pages *partner.PageEnumerator[resource], all bool) ([]resource, int, error) {
	first := pages.Current()
	if !all {
		return first.Items, first.TotalCount, nil
	}

	bar := a.progress(first.TotalCount)

	var items []resource

	err := pages.ForEach(ctx, func(item resource) error {
		items = append(items, item)

		if bar != nil {
			_ = bar.Add(1)
		}

		return nil
	})

	if bar != nil {
		_ = bar.Finish()
	}

	if err != nil {
		return items, first.TotalCount, fmt.Errorf("listing after %d items: %w", len(items), err)
	}

	return items, first.TotalCount, nil
}

// progress returns a progress bar on stderr when it is a terminal, nil otherwise.
func (a *app) progress(total int) *progressbar.ProgressBar {
	file, ok := a.stderr.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) { //nolint:gosec // file descriptors fit in int
		return nil
	}

	if total <= 0 {
		total = -1
	}

	return progressbar.NewOptions(
		total,
		progressbar.OptionSetDescription("Fetching items"),
		progressbar.OptionSetWriter(file),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(file, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

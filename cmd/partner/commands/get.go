package commands

import (
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/partnercenter/pkg/partnerclient"
)

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get PATH",
		Short: "Get a resource",
		Long:  "Get the resource at an API path, for example /v1/customers/<customer-id>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			item, err := partnerclient.Get[resource](cmd.Context(), client, args[0])
			if err != nil {
				return err
			}

			structured, err := writeStructured(a.stdout, a.cfg.Output, item)
			if structured || err != nil {
				return err
			}

			return writeProperties(a.stdout, *item)
		},
	}
}

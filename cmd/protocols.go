package cmd

import (
	"strconv"

	"github.com/pulseone/pulse-admin/pkg/protocolRegistry"
	"github.com/spf13/cobra"
)

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "Inspect the protocols supported by the backend",
}

var protocolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported protocols",
}

func init() {
	flags := addPageFlags(protocolsListCmd)
	protocolsListCmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.protocols.Load(cmd.Context()); err != nil {
			return err
		}
		runLocalListing(a, flags, &listing[*protocolRegistry.Protocol]{
			cacheKey: "protocols",
			headers:  []string{"ID", "TYPE", "NAME", "PORT", "TRANSPORT", "ENABLED"},
			row: func(p **protocolRegistry.Protocol) []string {
				pr := *p
				transport := "network"
				if pr.UsesSerial {
					transport = "serial"
				} else if pr.RequiresBroker {
					transport = "broker"
				}
				return []string{
					strconv.Itoa(pr.Id),
					pr.ProtocolType,
					pr.DisplayName,
					intLabel(pr.DefaultPort),
					transport,
					boolLabel(pr.IsEnabled && !pr.IsDeprecated, "yes", "no"),
				}
			},
		}, a.protocols.List())
		return nil
	})
	protocolsCmd.AddCommand(protocolsListCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"streetview-download/internal/streetview"
)

var infoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Show the parameters encoded in a share URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Bool("json", false, "print as JSON")
}

func runInfo(cmd *cobra.Command, args []string) error {
	info, err := streetview.ParseURL(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Panorama ID: %s\n", info.PanoramaID)
	fmt.Fprintf(out, "Latitude:    %.7f\n", info.Latitude)
	fmt.Fprintf(out, "Longitude:   %.7f\n", info.Longitude)
	fmt.Fprintf(out, "FOV:         %g\n", info.FOV)
	fmt.Fprintf(out, "Yaw:         %g\n", info.Yaw)
	fmt.Fprintf(out, "Pitch:       %g\n", info.Pitch)
	return nil
}

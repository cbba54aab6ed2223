package main

import (
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the collection to an encrypted file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		vdb, err := openVectorDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if err := vdb.Export(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Exported %d documents\n", vdb.Count())
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the collection from an encrypted export file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		vdb, err := openVectorDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if err := vdb.Import(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Imported %d documents\n", vdb.Count())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
}

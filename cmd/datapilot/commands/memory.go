package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datapilot-io/datapilot/pkg/memory"
)

func newMemoryCommand() *cobra.Command {
	var memoryPath string

	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect or annotate the run memory store",
	}

	cmd.PersistentFlags().StringVar(&memoryPath, "memory", "agent_memory.json", "memory store file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print stored dataset records and notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, memoryPath)
			if err != nil {
				return err
			}

			records := store.Records()
			if len(records) == 0 {
				fmt.Println("No dataset records.")
			} else {
				fingerprints := make([]string, 0, len(records))
				for fp := range records {
					fingerprints = append(fingerprints, fp)
				}
				sort.Strings(fingerprints)

				for _, fp := range fingerprints {
					rec := records[fp]
					raw, err := json.MarshalIndent(rec, "", "  ")
					if err != nil {
						return fmt.Errorf("encode record %s: %w", fp, err)
					}
					fmt.Printf("%s\n%s\n", fp, raw)
				}
			}

			notes := store.Notes()
			if len(notes) == 0 {
				return nil
			}
			fmt.Println("\nNotes:")
			for _, n := range notes {
				fmt.Printf("  [%s] %s\n", n.TS, n.Msg)
			}
			return nil
		},
	}

	note := &cobra.Command{
		Use:   "note <message>",
		Short: "Append a note to the memory log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, memoryPath)
			if err != nil {
				return err
			}
			return store.AddNote(strings.Join(args, " "))
		},
	}

	cmd.AddCommand(show)
	cmd.AddCommand(note)
	return cmd
}

// openStore resolves the store path, flag over config, and opens it.
func openStore(cmd *cobra.Command, flagPath string) (*memory.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path := cfg.MemoryPath
	if cmd.Flags().Changed("memory") || path == "" {
		path = flagPath
	}
	return memory.Open(path)
}

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage synchronised folders",
	Long: `Add, list and remove the local folders whose media is uploaded.

Each folder has a media type filter (photo, video or all) and can be
paused without losing its upload history.`,
}

var folderAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderAdd,
}

var folderListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List folders",
	RunE:    runFolderList,
}

var folderRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a folder and forget its uploads",
	Args:    cobra.ExactArgs(1),
	RunE:    runFolderRemove,
}

var folderEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Resume syncing a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFolderSyncing(cmd, args[0], true)
	},
}

var folderDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Pause syncing a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFolderSyncing(cmd, args[0], false)
	},
}

var folderEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a folder's name, topic or media type",
	Long: `Changes the given fields and keeps the rest.

Uploaded files are tracked per media type, so after changing the type,
files that match the new type are uploaded again on the next cycle.`,
	Args: cobra.ExactArgs(1),
	RunE: runFolderEdit,
}

var folderResetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Forget uploaded files so they are sent again",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderReset,
}

func init() {
	folderAddCmd.Flags().StringP("name", "n", "", "display name (default: directory name)")
	folderAddCmd.Flags().StringP("type", "t", "all", "media type: photo, video or all")
	folderAddCmd.Flags().String("topic", "", "destination topic for uploads")
	folderAddCmd.Flags().Bool("paused", false, "add the folder without syncing it")

	folderEditCmd.Flags().StringP("name", "n", "", "display name")
	folderEditCmd.Flags().StringP("type", "t", "", "media type: photo, video or all")
	folderEditCmd.Flags().String("topic", "", "destination topic for uploads (empty clears it)")

	folderCmd.AddCommand(folderAddCmd)
	folderCmd.AddCommand(folderEditCmd)
	folderCmd.AddCommand(folderListCmd)
	folderCmd.AddCommand(folderRemoveCmd)
	folderCmd.AddCommand(folderEnableCmd)
	folderCmd.AddCommand(folderDisableCmd)
	folderCmd.AddCommand(folderResetCmd)
	rootCmd.AddCommand(folderCmd)
}

var errFolderServiceMissing = errors.New("folder service not configured")

func runFolderAdd(cmd *cobra.Command, args []string) error {
	if folderService == nil {
		return errFolderServiceMissing
	}

	name, _ := cmd.Flags().GetString("name")
	typeFlag, _ := cmd.Flags().GetString("type")
	topic, _ := cmd.Flags().GetString("topic")
	paused, _ := cmd.Flags().GetBool("paused")

	if name == "" {
		if abs, err := filepath.Abs(args[0]); err == nil {
			name = filepath.Base(abs)
		}
	}

	mediaType, err := domain.ParseMediaType(typeFlag)
	if err != nil {
		return fmt.Errorf("unknown media type %q: use photo, video or all", typeFlag)
	}

	folder, err := folderService.Add(cmd.Context(), domain.Folder{
		Name:      name,
		Path:      args[0],
		MediaType: mediaType,
		Topic:     topic,
		Syncing:   !paused,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("folder %s is already added", args[0])
		}
		return fmt.Errorf("failed to add folder: %w", err)
	}

	cmd.Printf("Added folder %s (%s)\n", folder.Name, folder.ID)
	cmd.Printf("  Path: %s\n", folder.Path)
	cmd.Printf("  Media: %s\n", folder.MediaType)
	return nil
}

func runFolderEdit(cmd *cobra.Command, args []string) error {
	if folderService == nil {
		return errFolderServiceMissing
	}

	flags := cmd.Flags()
	if !flags.Changed("name") && !flags.Changed("type") && !flags.Changed("topic") {
		return errors.New("nothing to change: use --name, --type or --topic")
	}

	ctx := cmd.Context()
	folder, err := folderService.Get(ctx, args[0])
	if err != nil {
		return folderError("edit", args[0], err)
	}
	previousType := folder.MediaType

	if flags.Changed("name") {
		folder.Name, _ = flags.GetString("name")
	}
	if flags.Changed("topic") {
		folder.Topic, _ = flags.GetString("topic")
	}
	if flags.Changed("type") {
		typeFlag, _ := flags.GetString("type")
		mediaType, err := domain.ParseMediaType(typeFlag)
		if err != nil {
			return fmt.Errorf("unknown media type %q: use photo, video or all", typeFlag)
		}
		folder.MediaType = mediaType
	}

	updated, err := folderService.Update(ctx, *folder)
	if err != nil {
		return folderError("edit", args[0], err)
	}

	cmd.Printf("Updated folder %s (%s)\n", updated.Name, updated.ID)
	cmd.Printf("  Media: %s\n", updated.MediaType)
	if updated.Topic != "" {
		cmd.Printf("  Topic: %s\n", updated.Topic)
	}
	if updated.MediaType != previousType {
		cmd.Println("  Matching files will be uploaded again on the next cycle.")
	}
	return nil
}

func runFolderList(cmd *cobra.Command, _ []string) error {
	if folderService == nil {
		return errFolderServiceMissing
	}

	folders, err := folderService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list folders: %w", err)
	}

	if len(folders) == 0 {
		cmd.Println("No folders configured. Add one with 'mediasync folder add <path>'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMEDIA\tSYNCING\tPATH")
	for _, f := range folders {
		syncing := "yes"
		if !f.Syncing {
			syncing = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.MediaType, syncing, f.Path)
	}
	return w.Flush()
}

func runFolderRemove(cmd *cobra.Command, args []string) error {
	if folderService == nil {
		return errFolderServiceMissing
	}

	if err := folderService.Remove(cmd.Context(), args[0]); err != nil {
		return folderError("remove", args[0], err)
	}

	cmd.Printf("Removed folder %s\n", args[0])
	return nil
}

func setFolderSyncing(cmd *cobra.Command, id string, syncing bool) error {
	if folderService == nil {
		return errFolderServiceMissing
	}

	if err := folderService.SetSyncing(cmd.Context(), id, syncing); err != nil {
		return folderError("update", id, err)
	}

	if syncing {
		cmd.Printf("Folder %s enabled\n", id)
	} else {
		cmd.Printf("Folder %s disabled\n", id)
	}
	return nil
}

func runFolderReset(cmd *cobra.Command, args []string) error {
	if folderService == nil {
		return errFolderServiceMissing
	}

	n, err := folderService.ResetSent(cmd.Context(), args[0])
	if err != nil {
		return folderError("reset", args[0], err)
	}

	cmd.Printf("Forgot %d uploaded files for folder %s\n", n, args[0])
	return nil
}

func folderError(action, id string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("folder %s not found", id)
	}
	return fmt.Errorf("failed to %s folder: %w", action, err)
}

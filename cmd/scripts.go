// ABOUTME: Scripts commands for the py3ide CLI
// ABOUTME: List, show, save, rename and delete scripts stored on the Gateway

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/scripttree"
	"github.com/spf13/cobra"
)

var (
	listAsTree bool

	saveFile        string
	saveFolder      string
	saveDescription string
	saveAuthor      string
	saveVersion     string

	renameFolder string
)

var scriptsCmd = &cobra.Command{
	Use:     "scripts",
	Aliases: []string{"script"},
	Short:   "Manage scripts saved on the Gateway",
}

var scriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved scripts",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runScriptsList(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var scriptsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a saved script's code",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runScriptsShow(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var scriptsSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save code as a named script",
	Long: `Save code from --file (or stdin) as a named script on the Gateway.
Saving under an existing name replaces that script.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var fileArgs []string
		if saveFile != "" {
			fileArgs = []string{saveFile}
		}
		code, err := readSource("", fileArgs, os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(2)
		}

		exitCode := runScriptsSave(ctx, os.Stdout, args[0], code)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var scriptsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved script",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runScriptsDelete(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var scriptsRenameCmd = &cobra.Command{
	Use:   "rename OLD NEW",
	Short: "Rename a saved script",
	Long: `Rename a saved script, keeping its code and metadata. With --folder the
script also moves to that folder; an empty --folder moves it to the root.
The new copy is saved before the old name is deleted.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var folder *string
		if cmd.Flags().Changed("folder") {
			folder = &renameFolder
		}

		exitCode := runScriptsRename(ctx, os.Stdout, args[0], args[1], folder)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	scriptsListCmd.Flags().BoolVar(&listAsTree, "tree", false, "Show scripts grouped by folder")

	scriptsSaveCmd.Flags().StringVarP(&saveFile, "file", "f", "", "File to read code from (default: stdin)")
	scriptsSaveCmd.Flags().StringVar(&saveFolder, "folder", "", "Folder path, e.g. Utils/Tags")
	scriptsSaveCmd.Flags().StringVar(&saveDescription, "description", "", "Script description")
	scriptsSaveCmd.Flags().StringVar(&saveAuthor, "author", "", "Author (default: PY3IDE_AUTHOR or $USER)")
	scriptsSaveCmd.Flags().StringVar(&saveVersion, "version", "", "Script version (default: 1.0)")

	scriptsRenameCmd.Flags().StringVar(&renameFolder, "folder", "", "Move the script to this folder path")

	scriptsCmd.AddCommand(scriptsListCmd, scriptsShowCmd, scriptsSaveCmd, scriptsRenameCmd, scriptsDeleteCmd)
	rootCmd.AddCommand(scriptsCmd)
}

func runScriptsList(ctx context.Context, w io.Writer) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	scripts, err := c.ListScripts(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	switch {
	case IsJSONOutput():
		data, _ := json.MarshalIndent(scripts, "", "  ")
		fmt.Fprintln(w, string(data))
	case len(scripts) == 0:
		fmt.Fprintln(w, "No saved scripts.")
	case listAsTree:
		fmt.Fprint(w, formatScriptTree(scripttree.Build(scripts)))
	default:
		fmt.Fprint(w, formatScriptTable(scripts))
	}
	return 0
}

// formatScriptTable lists scripts one per line with folder and version
func formatScriptTable(scripts []client.ScriptMetadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-30s %-24s %-8s %s\n", "NAME", "FOLDER", "VERSION", "MODIFIED")
	for _, s := range scripts {
		folder := scripttree.CleanPath(s.FolderPath)
		if folder == "" {
			folder = "/"
		}
		fmt.Fprintf(&b, "%-30s %-24s %-8s %s\n", s.Name, folder, s.Version, s.LastModified)
	}
	return b.String()
}

// formatScriptTree renders the folder tree with two-space indentation
func formatScriptTree(root *scripttree.Node) string {
	var b strings.Builder
	b.WriteString(root.Name + "/\n")
	for _, row := range root.Flatten(nil) {
		indent := strings.Repeat("  ", row.Depth+1)
		if row.Node.IsFolder() {
			fmt.Fprintf(&b, "%s%s/\n", indent, row.Node.Name)
			continue
		}
		line := indent + row.Node.Name
		if d := row.Node.Script.Description; d != "" {
			line += "  - " + d
		}
		b.WriteString(line + "\n")
	}
	folders, scripts := root.Count()
	fmt.Fprintf(&b, "\n%d script(s) in %d folder(s)\n", scripts, folders)
	return b.String()
}

func runScriptsShow(ctx context.Context, w io.Writer, name string) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	script, err := c.LoadScript(ctx, name)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		if client.IsNotFound(err) || errors.Is(err, client.ErrMissingScript) {
			return 1
		}
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(script, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	fmt.Fprint(w, script.Code)
	if !strings.HasSuffix(script.Code, "\n") {
		fmt.Fprintln(w)
	}
	return 0
}

func runScriptsSave(ctx context.Context, w io.Writer, name, code string) int {
	c, cfg, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	author := saveAuthor
	if author == "" {
		author = cfg.Author
	}

	req := client.SaveScriptRequest{
		Name:        name,
		Code:        code,
		Description: saveDescription,
		Author:      author,
		FolderPath:  saveFolder,
		Version:     saveVersion,
	}
	if err := c.SaveScript(ctx, req); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(w, "Saved script %q\n", strings.TrimSpace(name))
	return 0
}

func runScriptsDelete(ctx context.Context, w io.Writer, name string) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := c.DeleteScript(ctx, name); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(w, "Deleted script %q\n", name)
	return 0
}

func runScriptsRename(ctx context.Context, w io.Writer, oldName, newName string, folder *string) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := c.RenameScript(ctx, oldName, newName, folder); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		if client.IsConnectivity(err) {
			return 2
		}
		return 1
	}

	newName = strings.TrimSpace(newName)
	if folder != nil {
		fmt.Fprintf(w, "Renamed script %q to %q in %s\n", oldName, newName, folderLabel(*folder))
		return 0
	}
	fmt.Fprintf(w, "Renamed script %q to %q\n", oldName, newName)
	return 0
}

func folderLabel(folder string) string {
	if f := scripttree.CleanPath(folder); f != "" {
		return f
	}
	return "/"
}

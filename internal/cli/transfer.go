package cli

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/taskboard/internal/archive"
	"github.com/existflow/taskboard/internal/logger"
)

// passphraseEnv supplies the export passphrase without a prompt
const passphraseEnv = "TASKBOARD_PASSPHRASE"

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the board as JSON",
	Long: `Write tasks, columns, users and activities to a JSON document.

The file defaults to taskboard-YYYY-MM-DD.json; use -o - for stdout.
With --encrypt the document is sealed with a passphrase, read from
$TASKBOARD_PASSPHRASE or prompted for.

Examples:
  taskboard export
  taskboard export -o backup.json --encrypt`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace tasks, columns and users from an export",
	Long: `Import a JSON export, plain or sealed. Tasks, columns and users present
in the file replace the board's; the activity log is kept.

Examples:
  taskboard import backup.json
  cat backup.json | taskboard import -`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	exportOutput  string
	exportEncrypt bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file, - for stdout")
	exportCmd.Flags().BoolVar(&exportEncrypt, "encrypt", false, "Seal the export with a passphrase")
}

func runExport(cmd *cobra.Command, args []string) error {
	b, closeStore, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := b.Export()
	if err != nil {
		return err
	}

	if exportEncrypt {
		pass, err := readPassphrase(cmd, true)
		if err != nil {
			return err
		}
		if data, err = archive.Seal(data, pass); err != nil {
			return fmt.Errorf("failed to seal export: %w", err)
		}
	}

	if exportOutput == "-" {
		_, err := cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}

	path := exportOutput
	if path == "" {
		path = fmt.Sprintf("taskboard-%s.json", b.Now().Format(time.DateOnly))
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	logger.Info("Board exported", logger.F("path", path), logger.F("sealed", exportEncrypt))
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d task(s) to %s\n", len(b.Tasks()), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read import: %w", err)
	}

	if archive.IsSealed(data) {
		pass, err := readPassphrase(cmd, false)
		if err != nil {
			return err
		}
		if data, err = archive.Open(data, pass); err != nil {
			return err
		}
	}

	b, closeStore, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := b.Import(cmd.Context(), data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Import complete")
	for _, c := range []struct {
		name string
		n    int
	}{{"tasks", res.Tasks}, {"columns", res.Columns}, {"users", res.Users}} {
		if c.n < 0 {
			fmt.Fprintf(out, "  %-8s unchanged\n", c.name)
		} else {
			fmt.Fprintf(out, "  %-8s %d\n", c.name, c.n)
		}
	}
	return nil
}

// readPassphrase takes the passphrase from the environment, or prompts on a terminal
func readPassphrase(cmd *cobra.Command, confirm bool) (string, error) {
	if pass := os.Getenv(passphraseEnv); pass != "" {
		return pass, nil
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("no terminal to prompt for a passphrase; set %s", passphraseEnv)
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Passphrase: ")
	passBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(passBytes) == 0 {
		return "", archive.ErrEmptyPassphrase
	}

	if confirm {
		fmt.Fprint(cmd.ErrOrStderr(), "Confirm passphrase: ")
		confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase: %w", err)
		}
		if string(confirmBytes) != string(passBytes) {
			return "", fmt.Errorf("passphrases do not match")
		}
	}
	return string(passBytes), nil
}

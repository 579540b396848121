package confirm

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/elskow/deployit/internal/pipeline/types"
)

// RenderSummary prints the resolved descriptor as a table followed by the
// one line deployment banner.
func RenderSummary(out io.Writer, d *types.ProjectDescriptor, deployConfigFile string) error {
	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(pterm.TableData{
			{"Field", "Value"},
			{"Public Address", d.PublicAddress()},
			{"Server Name", d.Name},
			{"Internal Port", strconv.Itoa(d.InternalPort)},
			{"External Port", strconv.Itoa(d.ExternalPort)},
			{"Persistent Storage Location", d.PersistentStoragePath},
			{"Project Type", string(d.ProjectType)},
		}).
		Srender()
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}

	fmt.Fprintf(out, "\n%s\n\n", table)
	fmt.Fprintf(out, "Deploying %s to host %s (internal server port %s) - %s project type\n\n",
		pterm.Green(d.Name), pterm.Green(d.Host), pterm.Green(d.InternalPort), d.ProjectType)
	fmt.Fprintf(out, "(NOTE: edit the %s file to change these values)\n\n", deployConfigFile)
	return nil
}

func RenderSuccess(out io.Writer, d *types.ProjectDescriptor) {
	fmt.Fprintln(out, "\nDeployment successful!")
	fmt.Fprintf(out, "Public Address: %s\n\n", pterm.Green(d.PublicAddress()))
}

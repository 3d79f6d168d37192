package cmd

import (
	"bytes"
	"fmt"

	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListVariants prints every culling variant and whether this host can run it.
func ListVariants(ctx *cli.Context) error {
	setupLogging(ctx)

	caps := cull.HostCapabilities()
	logger.Noticef("host capabilities: SSE2=%t NEON=%t\n%s", caps.SSE2, caps.Neon, variantTable(cull.Variants()))
	return nil
}

func variantTable(variants []cull.Variant) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Variant", "Layout", "Execution", "ISA", "Supported", "Description"})
	for i, v := range variants {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			v.String(),
			v.Layout().String(),
			v.Execution(),
			v.InstructionSet().String(),
			fmt.Sprintf("%t", v.Supported()),
			v.Description(),
		})
	}
	table.Render()
	return buf.String()
}

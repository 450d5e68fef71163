package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/commissions/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Calculate commands.CalculateCmd `cmd:"" help:"Compute daily commissions for a partner file"`
		Validate  commands.ValidateCmd  `cmd:"" help:"Validate a partner file"`
		Tree      commands.TreeCmd      `cmd:"" help:"Print the partner hierarchy with commissions"`
		Debug     bool                  `help:"Enable debug mode."`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("commissions"),
		kong.Description("Referral commission calculator"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}

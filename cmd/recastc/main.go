// Command recastc is a thin demonstration driver over the recast
// core: it loads a flat binary image, runs the AddressMaterializer
// over a list of candidate addresses, and writes the resulting
// ConfigStore out as TOML. It exists to exercise the core end to end,
// not as a complete decompiler front end.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ComedicChimera/olive"

	"github.com/irforge/recast/common"
	"github.com/irforge/recast/config"
	"github.com/irforge/recast/image"
	"github.com/irforge/recast/ir"
	"github.com/irforge/recast/materialize"
	"github.com/irforge/recast/report"
	"github.com/irforge/recast/types"
)

func main() {
	cli := olive.NewCLI("recastc", "recastc drives the recast IR-modification core over a flat image", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "report verbosity", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	materializeCmd := cli.AddSubcommand("materialize", "materialize globals at a set of addresses", true)
	materializeCmd.AddPrimaryArg("image-path", "path to the flat binary image", true)
	materializeCmd.AddStringArg("addrs", "a", "comma-separated hex addresses to materialize", true)
	materializeCmd.AddStringArg("out", "o", "path to write the resulting config document", false)
	materializeCmd.AddFlag("strict", "s", "disable the ARM/Thumb/PIC32 data-in-code relaxation")

	cli.AddSubcommand("version", "print the recastc version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rep := report.New(levelFromName(stringArg(result, "loglevel", "verbose")))

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "materialize":
		runMaterialize(rep, subResult)
	case "version":
		fmt.Println("recastc", common.Version)
	default:
		fmt.Fprintln(os.Stderr, "no command given; try `recastc materialize` or `recastc version`")
		os.Exit(1)
	}
}

func runMaterialize(rep *report.Reporter, result *olive.ArgParseResult) {
	imgPath, _ := result.PrimaryArg()
	data, err := os.ReadFile(imgPath)
	if err != nil {
		rep.Error("materialize", err)
		os.Exit(1)
	}

	view := &image.MemView{
		Base:     0,
		Data:     data,
		WordSize: 8,
		Machine:  types.ArchGeneric,
		Segments: []image.Segment{{Start: 0, End: uint64(len(data)), Kind: image.SegmentData}},
		MakeConstant: func(t types.Type, addr uint64, bytes []byte) (any, bool) {
			it, ok := t.(types.Int)
			if !ok {
				return nil, false
			}
			n := int(it.Bits / 8)
			if n == 0 || n > len(bytes) {
				return nil, false
			}
			var v int64
			for i := n - 1; i >= 0; i-- {
				v = v<<8 | int64(bytes[i])
			}
			return ir.NewConstInt(it, v), true
		},
	}

	graph := ir.NewGraph()
	store := config.NewStore()
	ctx := &materialize.Context{Graph: graph, Store: store, Image: view}

	stats := &materialize.Stats{}
	addrsArg := result.Arguments["addrs"].(string)
	for _, tok := range strings.Split(addrsArg, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(tok, "0x"), 16, 64)
		if err != nil {
			rep.Error("materialize", fmt.Errorf("bad address %q: %w", tok, err))
			continue
		}

		rep.BeginPhase("materialize")
		strict := result.Arguments["strict"] != nil
		gv, err := materialize.GetGlobalVariable(ctx, addr, common.DefaultNameHint, materialize.Options{Strict: strict, Stats: stats})
		if err != nil {
			rep.EndPhase(false)
			rep.Error("materialize", err)
			continue
		}
		rep.EndPhase(true)
		if gv == nil {
			rep.Warn("materialize", fmt.Sprintf("0x%x: not materializable in IR (config entry kept)", addr))
		} else {
			rep.Info("materialize", fmt.Sprintf("0x%x -> %s", addr, gv.Repr()))
		}
	}
	for i := 0; i < stats.RelaxedAccepts; i++ {
		rep.RecordRelaxedAccept()
	}

	doc := config.Snapshot(store)
	out, err := config.Marshal(doc)
	if err != nil {
		rep.Error("materialize", err)
		os.Exit(1)
	}

	outPath := stringArg(result, "out", "")
	if outPath == "" {
		outPath = common.ConfigFileName
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		rep.Error("materialize", err)
		os.Exit(1)
	}

	rep.Summary()
}

func stringArg(result *olive.ArgParseResult, name, def string) string {
	if v, ok := result.Arguments[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func levelFromName(name string) report.Level {
	switch name {
	case "silent":
		return report.LevelSilent
	case "error":
		return report.LevelError
	case "warn":
		return report.LevelWarn
	default:
		return report.LevelVerbose
	}
}

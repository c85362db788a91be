package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	sampler "github.com/jollysean/calfbox-go/src"
)

/*------------------------------------------------------------------
 *
 * Name:	main
 *
 * Purpose:	Exercises the control-surface queries (status/regions/
 *		groups/new_group) against a program loaded from a config
 *		file, printing the replies to stdout. A real control surface
 *		would dispatch these over OSC or similar; that transport is
 *		out of scope here. The SFZLoader wired in below (noopLoader)
 *		does not parse SFZ text and always returns an error, so
 *		BuildProgram fails and the program exits before running a
 *		query.
 *
 *---------------------------------------------------------------*/

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config document with spgm:<name> sections")
	program := pflag.StringP("program", "p", "", "program name to load, or !/path/to/file.sfz to bypass the config tree")
	command := pflag.StringP("cmd", "x", "status", "one of: status, regions, groups, new_group")
	groupName := pflag.StringP("name", "n", "", "group name, for -x new_group")
	voices := pflag.IntP("voices", "v", 64, "voice pool size for the demo module")
	help := pflag.Bool("help", false, "Display help text.")
	pflag.Parse()

	if *help || *program == "" {
		pflag.Usage()
		os.Exit(1)
	}

	logger := log.Default()

	var tree *sampler.ConfigTree
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			logger.Fatal("reading config", "path", *configPath, "err", err)
		}
		tree, err = sampler.LoadConfigTree(data)
		if err != nil {
			logger.Fatal("parsing config", "err", err)
		}
	}

	if tree == nil && (len(*program) == 0 || (*program)[0] != '!') {
		logger.Fatal("a config file (-c) is required unless -p starts with '!'")
	}

	prog, err := sampler.BuildProgram(tree, *program, 0, noopLoader{})
	if err != nil {
		logger.Fatal("building program", "err", err)
	}

	module := sampler.NewModule(44100, 1, 2, *voices, sampler.NewPipeStack(nil))

	switch *command {
	case "status":
		s := sampler.Status(module)
		fmt.Printf("active=%d free=%d pool=%d\n", s.ActiveVoices, s.FreeVoices, s.PoolSize)
	case "regions":
		for _, r := range sampler.Regions(prog) {
			fmt.Printf("key=%d-%d vel=%d-%d trigger=%v waveform=%s\n", r.LoKey, r.HiKey, r.LoVel, r.HiVel, r.Trigger, r.Waveform)
		}
	case "groups":
		for _, g := range sampler.Groups(prog) {
			fmt.Printf("%s: %d region(s)\n", g.Name, g.RegionCount)
		}
	case "new_group":
		if *groupName == "" {
			logger.Fatal("-n is required for -x new_group")
		}
		reply := sampler.NewGroup(prog, *groupName)
		fmt.Printf("id=%s name=%s\n", reply.ID, reply.Name)
	default:
		logger.Fatal("unknown command", "cmd", *command)
	}
}

type noopLoader struct{}

func (noopLoader) LoadProgram(sfzPath, sampleDir string) ([]*sampler.LayerData, error) {
	return nil, fmt.Errorf("sfz parsing is outside this demo; supply a program pre-populated some other way")
}

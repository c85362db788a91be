package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	sampler "github.com/jollysean/calfbox-go/src"
)

/*------------------------------------------------------------------
 *
 * Name:	main
 *
 * Purpose:	Demo player: loads a single SFZ program via a YAML config
 *		section and plays one note (-n/-v) against it through the
 *		default portaudio output device. Intended as a smoke test
 *		for the sampler core, not a real instrument host. The
 *		SFZLoader wired in below (noopLoader) does not parse SFZ
 *		text and always returns an error, so BuildProgram fails and
 *		the program exits before opening the audio stream.
 *
 *---------------------------------------------------------------*/

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config document with spgm:<name> sections")
	program := pflag.StringP("program", "p", "", "program name to load, or !/path/to/file.sfz to bypass the config tree")
	note := pflag.IntP("note", "n", 60, "MIDI note number to trigger")
	velocity := pflag.IntP("velocity", "v", 100, "MIDI velocity to trigger with")
	seconds := pflag.Float64P("seconds", "s", 3.0, "how long to play before releasing and draining")
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

	const sampleRate = 44100.0
	module := sampler.NewModule(sampleRate, 1, 2, 64, sampler.NewPipeStack(nil))
	channel := &sampler.Channel{Index: 0, Module: module, Program: prog}
	channel.ChannelVolumeCC = 127

	if err := portaudio.Initialize(); err != nil {
		logger.Fatal("portaudio init", "err", err)
	}
	defer portaudio.Terminate()

	left := make([]float32, sampler.BlockSize)
	right := make([]float32, sampler.BlockSize)
	outputs := [][]float32{left, right}

	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, sampler.BlockSize, func(out [][]float32) {
		module.ProcessBlock([]*sampler.Channel{channel}, outputs)
		copy(out[0], left)
		copy(out[1], right)
	})
	if err != nil {
		logger.Fatal("opening stream", "err", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		logger.Fatal("starting stream", "err", err)
	}
	defer stream.Stop()

	rll := prog.RLL()
	matched := sampler.NextLayer(rll.AttackLayers, channel, *note, *velocity, channel.Index+1, 0, false)
	if len(matched) == 0 {
		logger.Warn("no layer matched requested note", "note", *note, "velocity", *velocity)
	}
	var exgroups []int
	voices := make([]*sampler.Voice, 0, len(matched))
	for _, l := range matched {
		v := module.AllocVoice()
		if v == nil {
			logger.Warn("voice pool exhausted")
			break
		}
		v.Start(channel, l, *note, *velocity, &exgroups)
		voices = append(voices, v)
	}

	portaudio.Sleep(int64(*seconds * 1000))
	for _, v := range voices {
		v.Release(false)
	}
	portaudio.Sleep(500)

	fmt.Println("done")
}

type noopLoader struct{}

func (noopLoader) LoadProgram(sfzPath, sampleDir string) ([]*sampler.LayerData, error) {
	return nil, fmt.Errorf("sfz parsing is outside this demo; supply a program pre-populated some other way")
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
	"gitlab.com/mstarongitlab/goutils/sliceutils"

	"github.com/mstarongithub/waytag/common/ipc"
	"github.com/mstarongithub/waytag/config"
)

var (
	utilAction *string = flag.String(
		"action",
		"",
		"The action to perform. Can be one of:"+
			"\n\t- none: Do nothing"+
			"\n\t- outputs: List available outputs"+
			"\n\t- modes <output>: List available modes for an output",
	)
	outputSelection *string = flag.String(
		"output",
		"",
		"Output to perform the action on. Required for some actions",
	)
	jsonOutput *bool = flag.Bool(
		"json",
		false,
		"Emit the result as JSON instead of plain text",
	)
)

func utilMain(conf config.Config) {
	if *help {
		utilHelpMessage()
		return
	}

	// Init a server, used for stuff like getting displays
	server, err := NewServer(&conf)
	if err != nil {
		logrus.WithError(err).Fatal("initializing server")
	}
	if err = server.Start(); err != nil {
		logrus.WithError(err).Fatal("starting server")
	}

	req := ipc.OutputRequest{
		IncludeModes:    *utilAction == "modes",
		SpecifiesOutput: *outputSelection != "",
		TargetOutput:    *outputSelection,
	}

	switch *utilAction {
	case "outputs":
		utilPrintOutputs(utilCollectOutputs(server, req))
	case "modes":
		if *outputSelection == "" {
			fmt.Println("Output has to be specified")
			return
		}
		utilPrintOutputs(utilCollectOutputs(server, req))
	}
}

func utilHelpMessage() {
	fmt.Println("---- Help message for waytag in tool mode ----")
	fmt.Println("\nIn tool mode, waytag offers various tools for figuring out configurations and similar")
	fmt.Println("\nGeneral flags:")
	fmt.Println("\t-config: Path to the config file. Default is the XDG config dir")
	fmt.Println("\t-tool: Start as a tool instead of a compositor")
	fmt.Println("\t-help: Show this help message (or the one for compositor mode if -tool is not set)")
	fmt.Println("\nTool flags:")
	fmt.Println("\t-action: The action to perform. Can be one of:")
	fmt.Println("\t\t- (default) outputs: List available outputs")
	fmt.Println("\t\t- modes: List available modes for an output. Use with -output")
	fmt.Println("\t-output: Output to perform the action on. Required for -action modes")
	fmt.Println("\t-json: Emit the result as JSON instead of plain text")
}

func utilCollectOutputs(server *Server, req ipc.OutputRequest) ipc.OutputResponse {
	outputs := server.GetOutputs()
	if req.SpecifiesOutput {
		outputs = sliceutils.Filter(outputs, func(output *wlroots.Output) bool {
			return output.Name() == req.TargetOutput
		})
	}

	res := ipc.OutputResponse{
		OutputsFound: len(outputs),
		OutputModes:  map[string][]ipc.OutputMode{},
	}
	for _, output := range outputs {
		res.Outputs = append(res.Outputs, output.Name())
		if !req.IncludeModes {
			continue
		}
		for _, mode := range output.Modes() {
			res.OutputModes[output.Name()] = append(res.OutputModes[output.Name()], ipc.OutputMode{
				Width:       int(mode.Width()),
				Height:      int(mode.Height()),
				RefreshRate: int(mode.Refresh()),
				Preferred:   mode.Preferred(),
			})
		}
	}
	return res
}

func utilPrintOutputs(res ipc.OutputResponse) {
	if *jsonOutput {
		raw, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			logrus.WithError(err).Fatal("encoding output list")
		}
		fmt.Println(string(raw))
		return
	}

	if res.OutputsFound == 0 {
		fmt.Println("No matching outputs found")
		return
	}
	for i, name := range res.Outputs {
		fmt.Printf("Output %v: %s\n", i, name)
		for _, mode := range res.OutputModes[name] {
			if mode.Preferred {
				fmt.Printf("\t- %dx%d@%d (preferred)\n", mode.Width, mode.Height, mode.RefreshRate)
			} else {
				fmt.Printf("\t- %dx%d@%d\n", mode.Width, mode.Height, mode.RefreshRate)
			}
		}
	}
}

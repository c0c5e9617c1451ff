package ipc

// Message types shared between tool mode and anything that wants to
// talk to the compositor from outside.
// TODO: serve these over a unix socket so external bars can query the tasklist

type (
	// A request to list the available outputs
	OutputRequest struct {
		// Whether to include the modes an output supports
		IncludeModes bool `json:"include_modes"`
		// Target one specific output
		SpecifiesOutput bool `json:"specifies_output"`
		// Name of the output you want info on. Only matters if SpecifiesOutput is set
		TargetOutput string `json:"target_output"`
	}

	// A mode an output supports
	OutputMode struct {
		// Mode width in pixel
		Width int `json:"width"`
		// Mode height in pixel
		Height int `json:"height"`
		// Refresh rate of the mode in millihertz
		RefreshRate int `json:"refresh_rate"`
		// Whether the output prefers this mode
		Preferred bool `json:"preferred"`
	}

	// Response to a OutputRequest message
	OutputResponse struct {
		// List of all outputs. Only contains the target output if one was specified
		Outputs []string `json:"outputs"`
		// Modes per output. Only set if IncludeModes is true
		OutputModes map[string][]OutputMode `json:"output_modes,omitempty"`
		// Nr of outputs found
		OutputsFound int `json:"outputs_found"`
	}
)

package main

// Flag names shared between flag registration and viper lookups.
const (
	FlagVerbose = "verbose"
	FlagConfig  = "config"
	FlagRoot    = "root"

	FlagStatus = "status"
	FlagJSON   = "json"

	FlagAdd    = "add"
	FlagRemove = "remove"

	FlagFocus   = "focus"
	FlagDensity = "density"
	FlagWidth   = "width"

	FlagPriority   = "priority"
	FlagFiles      = "files"
	FlagProblem    = "problem"
	FlagImpact     = "impact"
	FlagAcceptance = "acceptance"
)

package command

// Config controls a single invocation of [Runner.Run].
//
// Exactly one hook fires per invocation: OnDryRun when DryRun is set,
// OnComplete otherwise. Hooks receive the final, possibly transformed,
// result and must not modify it.
type Config struct {
	// DryRun describes instead of executing; nil means false.
	DryRun *bool

	OnDryRun   func(Result)
	OnComplete func(Result)

	// Transform replaces the result before the hook sees it.
	Transform func(Result) (Result, error)
}

// IsDryRun reports whether the configuration asks for a dry run.
func (c Config) IsDryRun() bool {
	return c.DryRun != nil && *c.DryRun
}

// Merge layers the given configurations in order of increasing precedence.
// Every field set in a later layer replaces the one of the earlier layers;
// unset fields (nil) never override.
func Merge(layers ...Config) Config {
	var merged Config

	for _, l := range layers {
		if l.DryRun != nil {
			v := *l.DryRun
			merged.DryRun = &v
		}
		if l.OnDryRun != nil {
			merged.OnDryRun = l.OnDryRun
		}
		if l.OnComplete != nil {
			merged.OnComplete = l.OnComplete
		}
		if l.Transform != nil {
			merged.Transform = l.Transform
		}
	}

	return merged
}

package flowfield

// Fields is one complete, immutable result of a build.
type Fields struct {
	Goal        Cell
	Config      Config
	Costs       *CostField
	Integration *IntegrationField
	Flow        *FlowField
	Generation  int
}

// Direction returns the flow direction at c.
func (f *Fields) Direction(c Cell) Direction {
	if f == nil {
		return DirNone
	}
	return f.Flow.At(c)
}

// Builder runs both passes and keeps the last successful result. A failed
// build leaves the previous result in place. Not safe for concurrent use.
type Builder struct {
	cfg        Config
	fields     *Fields
	generation int
}

// NewBuilder returns a builder with no result yet.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Config returns the options used for the next build.
func (b *Builder) Config() Config {
	return b.cfg
}

// SetConfig changes the options used for the next build. The current result
// is kept until that build succeeds.
func (b *Builder) SetConfig(cfg Config) {
	b.cfg = cfg
}

// Fields returns the last successful result, or nil.
func (b *Builder) Fields() *Fields {
	return b.fields
}

// Build recomputes both fields for goal. costs is copied into the result so
// later edits by the caller do not show through.
func (b *Builder) Build(costs *CostField, goal Cell) (*Fields, error) {
	integration, err := BuildIntegrationField(costs, goal, b.cfg)
	if err != nil {
		return nil, err
	}
	flow, err := BuildFlowField(integration, goal, b.cfg.Connectivity)
	if err != nil {
		return nil, err
	}
	b.generation++
	b.fields = &Fields{
		Goal:        goal,
		Config:      b.cfg,
		Costs:       costs.Clone(),
		Integration: integration,
		Flow:        flow,
		Generation:  b.generation,
	}
	return b.fields, nil
}

package analyzer

// AnalyzeResult bundles the duplicate, unused-selector and structure analyses
// of one project into a single payload.
type AnalyzeResult struct {
	Duplicates *DuplicatesResult `json:"duplicates"`
	Unused     *UnusedResult     `json:"unused"`
	Structure  *StructureResult  `json:"structure"`
}

// Analyze runs all three analyses over root. The options apply to the
// duplicate analysis; the other two take no options.
func (a *Analyzer) Analyze(root string, opts DuplicatesOptions) (*AnalyzeResult, error) {
	duplicates, err := a.Duplicates(root, opts)
	if err != nil {
		return nil, err
	}
	unused, err := a.Unused(root)
	if err != nil {
		return nil, err
	}
	structure, err := a.Structure(root)
	if err != nil {
		return nil, err
	}
	return &AnalyzeResult{
		Duplicates: duplicates,
		Unused:     unused,
		Structure:  structure,
	}, nil
}

package logger

// AuditTrail records the per-stage outcome of a filter pipeline run: one line
// per stage reporting the stage name, whether it was enabled, and the record
// count retained after it. Suitable for diagnostic capture when an operator
// is chasing unexpected record loss.
type AuditTrail struct {
	logger  Logger
	dataset string
}

// NewAuditTrail creates an audit trail scoped to one dataset of a run.
func NewAuditTrail(log Logger, dataset string) *AuditTrail {
	if log == nil {
		log = GetGlobalLogger()
	}
	return &AuditTrail{
		logger:  log.WithComponent("filter_audit"),
		dataset: dataset,
	}
}

// Stage emits one audit line for a pipeline stage.
func (a *AuditTrail) Stage(name string, enabled bool, retained int) {
	a.logger.WithFields(Fields{
		"dataset":  a.dataset,
		"stage":    name,
		"enabled":  enabled,
		"retained": retained,
	}).Info("Filter stage completed")
}

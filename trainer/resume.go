package trainer

// ResumeSource reports the checkpoint the training loop should load before its first epoch:
// the model source path, when one is set and the run resumes from best or only evaluates.
func (c *Configs) ResumeSource() (path string, ok bool) {
	if c.ModelSrcPath != "" && (c.ResumeFromBest || c.EvalModel) {
		return c.ModelSrcPath, true
	}
	return "", false
}

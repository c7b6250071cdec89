package observability

const (
	AttrServiceName    = "service.name"
	AttrServiceVersion = "service.version"
	AttrThreadID       = "thread.id"
	AttrContextID      = "context.id"
	AttrToolName       = "tool.name"
	AttrNodeName       = "graph.node"
	AttrLLMModel       = "llm.model"
	AttrLLMTokensInput = "llm.tokens.input"
	AttrLLMTokensOut   = "llm.tokens.output"
	AttrErrorType      = "error.type"

	SpanPlannerStep   = "runtime.planner_step"
	SpanToolExecution = "runtime.tool_execution"
	SpanCompression   = "runtime.compression"
	SpanSubagentRun   = "runtime.subagent_run"
	SpanModelInvoke   = "runtime.model_invoke"

	DefaultServiceName  = "agentrt"
	DefaultSamplingRate = 1.0
	DefaultMetricsPath  = "/metrics"
)

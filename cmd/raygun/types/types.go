package types

// Report is the top level crash report posted to the Raygun entries endpoint
type Report struct {
	OccurredOn string  `json:"occurredOn"`
	Details    Details `json:"details"`
}

// Details holds every section of a crash report. Field order mirrors the
// order in which the assembler fills the sections.
type Details struct {
	MachineName    string         `json:"machineName"`
	Version        string         `json:"version"`
	Client         ClientInfo     `json:"client"`
	Error          ErrorInfo      `json:"error"`
	Environment    Environment    `json:"environment"`
	Request        *RequestInfo   `json:"request,omitempty"`
	Response       *ResponseInfo  `json:"response,omitempty"`
	User           User           `json:"user"`
	Tags           []string       `json:"tags"`
	UserCustomData map[string]any `json:"userCustomData"`
}

// ClientInfo identifies the reporting library to Raygun
type ClientInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	ClientURL string `json:"clientUrl"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	InnerError *ErrorInfo   `json:"innerError"`
	Data       *ErrorData   `json:"data,omitempty"`
	ClassName  string       `json:"className"`
	Message    string       `json:"message"`
	StackTrace []StackFrame `json:"stackTrace"`
}

// ErrorData points at the frame the error was raised from
type ErrorData struct {
	FileName   string `json:"fileName"`
	LineNumber int    `json:"lineNumber"`
	Function   string `json:"function"`
}

// StackFrame represents a single frame in a stack trace
type StackFrame struct {
	LineNumber int    `json:"lineNumber"`
	ClassName  string `json:"className"`
	FileName   string `json:"fileName"`
	MethodName string `json:"methodName"`
}

// Environment is a snapshot of the machine the report was produced on
type Environment struct {
	OSVersion           string    `json:"osVersion"`
	Architecture        string    `json:"architecture"`
	PackageVersion      string    `json:"packageVersion"`
	ProcessorCount      int       `json:"processorCount"`
	TotalPhysicalMemory uint64    `json:"totalPhysicalMemory"`
	DeviceName          string    `json:"deviceName"`
	DiskSpaceFree       []float64 `json:"diskSpaceFree"`
}

// RequestInfo contains HTTP request information
type RequestInfo struct {
	HostName    string            `json:"hostName"`
	URL         string            `json:"url"`
	Method      string            `json:"httpMethod"`
	IPAddress   string            `json:"iPAddress"`
	QueryString map[string]string `json:"queryString"`
	Form        map[string]string `json:"form"`
	Headers     map[string]string `json:"headers"`
	RawData     string            `json:"rawData"`
}

// ResponseInfo contains the status the host answered with
type ResponseInfo struct {
	StatusCode int `json:"statusCode"`
}

// User identifies who was affected by the error
type User struct {
	Identifier  string `json:"identifier"`
	IsAnonymous bool   `json:"isAnonymous"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	FirstName   string `json:"firstName"`
	UUID        string `json:"uuid"`
}

// AnonymousUser is used whenever no authenticated user is known
func AnonymousUser() User {
	return User{IsAnonymous: true}
}

package verdict

import (
	"fmt"
	"strconv"
)

// Judge0 status ids.
const (
	StatusInQueue       = 1
	StatusProcessing    = 2
	StatusAccepted      = 3
	StatusWrongAnswer   = 4
	StatusTimeLimit     = 5
	StatusCompilation   = 6
	StatusRTSigsegv     = 7
	StatusRTSigxfsz     = 8
	StatusRTSigfpe      = 9
	StatusRTSigabrt     = 10
	StatusRTNzec        = 11
	StatusRTOther       = 12
	StatusInternalError = 13
	StatusExecFormat    = 14
)

var statusLabels = map[int]string{
	StatusInQueue:       "In Queue",
	StatusProcessing:    "Processing",
	StatusAccepted:      "Accepted",
	StatusWrongAnswer:   "Wrong Answer",
	StatusTimeLimit:     "Time Limit Exceeded",
	StatusCompilation:   "Compilation Error",
	StatusRTSigsegv:     "Runtime Error (SIGSEGV)",
	StatusRTSigxfsz:     "Runtime Error (SIGXFSZ)",
	StatusRTSigfpe:      "Runtime Error (SIGFPE)",
	StatusRTSigabrt:     "Runtime Error (SIGABRT)",
	StatusRTNzec:        "Runtime Error (NZEC)",
	StatusRTOther:       "Runtime Error",
	StatusInternalError: "Internal Error",
	StatusExecFormat:    "Exec Format Error",
}

// StatusLabel names a judge status id.
func StatusLabel(id int) string {
	if label, ok := statusLabels[id]; ok {
		return label
	}
	return "Status " + strconv.Itoa(id)
}

// FormatMemory renders kilobytes, switching to megabytes at 1024 KB.
func FormatMemory(kb float64) string {
	if kb < 1024 {
		return strconv.FormatFloat(kb, 'f', -1, 64) + " KB"
	}
	return fmt.Sprintf("%.2f MB", kb/1024)
}

// FormatRuntime renders seconds.
func FormatRuntime(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64) + " s"
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"jarvis/internal/memory"
)

type AnalysisStatus string

const (
	StatusValid   AnalysisStatus = "valid"
	StatusInvalid AnalysisStatus = "invalid"
	StatusUnknown AnalysisStatus = "unknown"
	StatusError   AnalysisStatus = "error"
)

type Analysis struct {
	Status     AnalysisStatus
	Message    string
	Suggestion string
}

var templates = map[string]map[string]string{
	"python": {
		"function":    "def function_name(parameters):\n    # Your code here\n    return result",
		"class":       "class ClassName:\n    def __init__(self, parameters):\n        self.attributes = parameters\n\n    def method_name(self):\n        # Method code\n        pass",
		"loop":        "for item in collection:\n    # Process item\n    pass\n\n# Or while loop:\nwhile condition:\n    # Loop code\n    pass",
		"conditional": "if condition:\n    # Code if true\n    pass\nelif other_condition:\n    # Code if other true\n    pass\nelse:\n    # Code if all false\n    pass",
	},
	"javascript": {
		"function":    "function functionName(parameters) {\n  // Your code here\n  return result;\n}",
		"class":       "class ClassName {\n  constructor(parameters) {\n    this.attributes = parameters;\n  }\n\n  methodName() {\n    // Method code\n  }\n}",
		"loop":        "for (const item of collection) {\n  // Process item\n}\n\n// Or while loop:\nwhile (condition) {\n  // Loop code\n}",
		"conditional": "if (condition) {\n  // Code if true\n} else if (otherCondition) {\n  // Code if other true\n} else {\n  // Code if all false\n}",
	},
}

var glossary = map[string]map[string]string{
	"python": {
		"list comprehension": "A concise way to create lists: [expression for item in list if condition]",
		"dictionary":         "Key-value pairs: {key1: value1, key2: value2}",
		"function":           "Reusable code block: def name(params): return value",
		"class":              "Blueprint for objects with attributes and methods",
		"inheritance":        "One class inherits attributes/methods from another",
		"decorator":          "Function that modifies another function",
	},
	"javascript": {
		"function": "function name(params) { return value; } or const name = (params) => value",
		"class":    "class Name { constructor() {} method() {} }",
		"promise":  "Object representing eventual completion/error of async operation",
	},
}

// Concepts are checked in order, so multi-word names come first.
var Concepts = []string{"list comprehension", "dictionary", "function", "class", "inheritance", "decorator", "promise"}

// OfflineCoder is the local programming knowledge used without a provider.
type OfflineCoder struct {
	memory  *memory.Store
	python  string
	timeout time.Duration
}

func NewOfflineCoder(mem *memory.Store, pythonBin string, timeout time.Duration) *OfflineCoder {
	if pythonBin == "" {
		pythonBin = "python3"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OfflineCoder{memory: mem, python: pythonBin, timeout: timeout}
}

// AnalyzeCode checks syntax without executing. Only Python is understood.
func (o *OfflineCoder) AnalyzeCode(ctx context.Context, code, language string) Analysis {
	if language != "python" {
		return Analysis{Status: StatusUnknown, Message: "Language analysis not available offline"}
	}
	msg, err := checkPython(ctx, code)
	if err != nil {
		return Analysis{Status: StatusError, Message: fmt.Sprintf("Analysis error: %v", err)}
	}
	if msg != "" {
		return Analysis{Status: StatusInvalid, Message: "SyntaxError: " + msg, Suggestion: SuggestFix(msg)}
	}
	return Analysis{Status: StatusValid, Message: "Code syntax appears valid"}
}

// SuggestFix maps an error message to a fix hint. The first matching rule wins.
func SuggestFix(errorMessage string) string {
	s := strings.ToLower(errorMessage)
	switch {
	case strings.Contains(s, "unexpected indent"):
		return "Remove extra indentation or check consistent use of spaces/tabs"
	case strings.Contains(s, "expected ':'"), strings.Contains(s, "expected colon"):
		return "Add colon (:) at the end of function/class/if/for/while statements"
	case strings.Contains(s, "unterminated"):
		return "Close the string with the same quote character that opened it"
	case strings.Contains(s, "parenthes"), strings.Contains(s, "never closed"), strings.Contains(s, "unmatched"):
		return "Check for matching parentheses, brackets, or braces"
	case strings.Contains(s, "invalid syntax"):
		return "Check for typos, missing operators, or incorrect keyword usage"
	case strings.Contains(s, "name") && strings.Contains(s, "is not defined"):
		return "Variable might be misspelled or defined after use. Check variable names."
	case strings.Contains(s, "indentation"), strings.Contains(s, "indented block"):
		return "Ensure consistent indentation (4 spaces recommended)"
	default:
		return "Review the code for syntax errors and check documentation"
	}
}

// Template returns the code skeleton for pattern in language.
func (o *OfflineCoder) Template(pattern, language string) (string, bool) {
	if t, ok := templates[language][pattern]; ok {
		return t, true
	}
	return "Code template not available for this pattern/language", false
}

// Explain looks concept up in the glossary and records it as learned.
func (o *OfflineCoder) Explain(concept, language string) string {
	concept = strings.ToLower(concept)
	text, ok := glossary[language][concept]
	if !ok {
		return fmt.Sprintf("🤔 I don't have an offline explanation for '%s' in %s. Try asking when online.", concept, language)
	}
	if o.memory != nil {
		o.memory.RecordProgrammingKnowledge(language, concept, "")
	}
	return fmt.Sprintf("📚 %s: %s", concept, text)
}

// RunPython executes code in a temporary file with the configured timeout.
func (o *OfflineCoder) RunPython(ctx context.Context, code, language string) string {
	if language != "python" {
		return "❌ Only Python code can be executed safely in this version."
	}

	dir, err := os.MkdirTemp("", "jarvis-run-*")
	if err != nil {
		return fmt.Sprintf("❌ Execution error: %v", err)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "main.py")
	if err := os.WriteFile(file, []byte(code), 0o600); err != nil {
		return fmt.Sprintf("❌ Execution error: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var stdout, stderr strings.Builder
	cmd := exec.CommandContext(ctx, o.python, file)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "❌ Code execution timed out (possibly infinite loop)"
	case err == nil:
		return "✅ Code executed successfully!\nOutput:\n" + stdout.String()
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "❌ Error executing code:\n" + stderr.String()
		}
		return fmt.Sprintf("❌ Execution error: %v", err)
	}
}

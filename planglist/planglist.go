package planglist

// ProgrammingLang describes a language the external judge can run. The
// compile fields are nil for interpreted languages.
type ProgrammingLang struct {
	ID               string
	FullName         string
	CodeFilename     string
	CompileCmd       *string
	CompiledFilename *string
	ExecuteCmd       string
}

func strPtr(s string) *string { return &s }

var langs = []ProgrammingLang{
	{
		ID:               "cpp17",
		FullName:         "C++17 (GCC)",
		CodeFilename:     "main.cpp",
		CompileCmd:       strPtr("g++ -std=c++17 -O2 -o main main.cpp"),
		CompiledFilename: strPtr("main"),
		ExecuteCmd:       "./main",
	},
	{
		ID:               "go1.22",
		FullName:         "Go 1.22",
		CodeFilename:     "main.go",
		CompileCmd:       strPtr("go build -o main main.go"),
		CompiledFilename: strPtr("main"),
		ExecuteCmd:       "./main",
	},
	{
		ID:           "python3.11",
		FullName:     "Python 3.11",
		CodeFilename: "main.py",
		ExecuteCmd:   "python3.11 main.py",
	},
	{
		ID:               "java21",
		FullName:         "Java 21",
		CodeFilename:     "Main.java",
		CompileCmd:       strPtr("javac Main.java"),
		CompiledFilename: strPtr("Main.class"),
		ExecuteCmd:       "java Main",
	},
}

func ListProgrammingLanguages() []ProgrammingLang {
	res := make([]ProgrammingLang, len(langs))
	copy(res, langs)
	return res
}

func GetProgrammingLanguageById(id string) (*ProgrammingLang, error) {
	for _, l := range langs {
		if l.ID == id {
			lang := l
			return &lang, nil
		}
	}
	return nil, ErrInvalidProgLang()
}

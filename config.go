package tinylisp

import "fmt"

type Config map[string]*cfgVal

// NewConfig creates a new configuration object primed with the
// tunables the heap, reader and evaluator consult at startup.
func NewConfig() *Config {
	m := make(Config)
	m.SetInt("gc.threshold", 10000)
	m.SetInt("gc.freelist_max_bytes", 1024)
	m.SetInt("reader.tab_width", 8)
	m.SetBool("eval.trace", false)
	m.SetStringList("autoload.search_paths", []string{"."})
	return &m
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
	cfgValType_StringList
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined:  "undefined",
		cfgValType_Bool:       "bool",
		cfgValType_Int:        "int",
		cfgValType_String:     "string",
		cfgValType_StringList: "stringlist",
	}[vt]
}

type cfgVal struct {
	typ        cfgValType
	asBool     bool
	asInt      int
	asString   string
	asStrSlice []string
}

// assignType is mostly for preventing programming errors, it
func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("Can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("Can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Bool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Int)
	(*c)[path].asInt = v
}

func (c *Config) SetString(path string, v string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_String)
	(*c)[path].asString = v
}

func (c *Config) SetStringList(path string, v []string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_StringList)
	(*c)[path].asStrSlice = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("Bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("Int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("String setting `%s` does not exist", path))
}

func (c *Config) GetStringList(path string) []string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_StringList)
		return val.asStrSlice
	}
	panic(fmt.Sprintf("String list setting `%s` does not exist", path))
}

package dialect

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// profileSchema constrains custom dialect profile files. A profile picks
// one of the closed families and may override the store-specific IRIs.
const profileSchema = `
#Dialect: {
	name:    string & !=""
	family:  "graphdb" | "fuseki" | "embedded"
	explicitGraph?:      string
	textIndexPredicate?: string
	textIndexOnLiterals?: bool
}
profiles: [...#Dialect]
`

// LoadProfiles reads custom dialect profiles from every .cue file in dir,
// validated against the #Dialect schema. Each profile starts from its
// family's built-in defaults and applies the file's overrides.
//
// Profiles are returned sorted by name for deterministic registration.
func LoadProfiles(dir string) ([]Profile, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("profile directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("access profile directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan profile directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".cue") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	var profiles []Profile
	for _, file := range files {
		loaded, err := loadProfileFile(file)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, loaded...)
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

func loadProfileFile(path string) ([]Profile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(profileSchema)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compile profile schema: %w", schema.Err())
	}

	value := ctx.CompileBytes(src, cue.Filename(path))
	if value.Err() != nil {
		return nil, fmt.Errorf("%s: %w", path, value.Err())
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%s: invalid dialect profile: %w", path, err)
	}

	list, err := unified.LookupPath(cue.ParsePath("profiles")).List()
	if err != nil {
		return nil, fmt.Errorf("%s: profiles list: %w", path, err)
	}

	var profiles []Profile
	for list.Next() {
		p, err := decodeProfile(list.Value())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func decodeProfile(v cue.Value) (Profile, error) {
	var raw struct {
		Name                string  `json:"name"`
		Family              string  `json:"family"`
		ExplicitGraph       *string `json:"explicitGraph"`
		TextIndexPredicate  *string `json:"textIndexPredicate"`
		TextIndexOnLiterals *bool   `json:"textIndexOnLiterals"`
	}
	if err := v.Decode(&raw); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}

	p, err := BuiltIn(raw.Family)
	if err != nil {
		return Profile{}, err
	}
	p.Name = raw.Name
	if raw.ExplicitGraph != nil {
		p.ExplicitGraph = *raw.ExplicitGraph
	}
	if raw.TextIndexPredicate != nil {
		p.TextIndexPredicate = *raw.TextIndexPredicate
	}
	if raw.TextIndexOnLiterals != nil {
		p.TextIndexOnLiterals = *raw.TextIndexOnLiterals
	}
	return p, nil
}

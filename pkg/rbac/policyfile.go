package rbac

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tillware/posgate/pkg/auth"
)

// policyFile is the on-disk override format: a role name to permission list
// mapping.
//
//	roles:
//	  cashier:
//	    - create_sale
//	    - read_sale
type policyFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPolicyFile returns the default policy table with the YAML file at path
// merged in. Listed roles have their grant set replaced wholesale; roles not
// listed keep their defaults. Permissions outside the vocabulary are an
// error, not silently dropped.
func LoadPolicyFile(path string) (*PolicyTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	table := DefaultPolicy()
	for role, raw := range file.Roles {
		perms, unknown := SetFromStrings(raw)
		if len(unknown) > 0 {
			return nil, fmt.Errorf("policy file role %q references unknown permissions %v", role, unknown)
		}
		table.setRole(auth.Role(role), perms)
	}
	return table, nil
}

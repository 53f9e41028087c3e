package catalog

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
)

type StaffMember struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
}

// StaffDirectory answers department and staff lookups from a staff.json
// file of department name -> members.
type StaffDirectory struct {
	departments map[string][]StaffMember
}

// LoadStaffDirectory reads the staff file. A missing file yields an empty
// directory rather than an error; lookups then return nothing.
func LoadStaffDirectory(path string) (*StaffDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &StaffDirectory{departments: map[string][]StaffMember{}}, nil
		}
		return nil, err
	}

	departments := map[string][]StaffMember{}
	if err := json.Unmarshal(data, &departments); err != nil {
		return nil, err
	}
	return &StaffDirectory{departments: departments}, nil
}

// Departments returns all department names, sorted.
func (d *StaffDirectory) Departments() []string {
	names := make([]string, 0, len(d.departments))
	for name := range d.departments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StaffOf returns the members of a department, matched case-insensitively.
func (d *StaffDirectory) StaffOf(department string) []StaffMember {
	for name, members := range d.departments {
		if strings.EqualFold(name, department) {
			return members
		}
	}
	return nil
}

// DepartmentOf finds which department a staff member belongs to.
func (d *StaffDirectory) DepartmentOf(staffName string) (string, bool) {
	for department, members := range d.departments {
		for _, member := range members {
			if strings.EqualFold(member.Name, staffName) {
				return department, true
			}
		}
	}
	return "", false
}

// HeadOf returns the head of a department: the first member whose
// designation contains "principal" or "head", else the first member.
func (d *StaffDirectory) HeadOf(department string) (StaffMember, bool) {
	members := d.StaffOf(department)
	if len(members) == 0 {
		return StaffMember{}, false
	}
	for _, member := range members {
		designation := strings.ToLower(member.Designation)
		if strings.Contains(designation, "principal") || strings.Contains(designation, "head") {
			return member, true
		}
	}
	return members[0], true
}

// Empty reports whether the directory has no departments.
func (d *StaffDirectory) Empty() bool {
	return len(d.departments) == 0
}

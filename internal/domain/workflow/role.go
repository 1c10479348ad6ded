package workflow

// Role is an actor's position in the organizational hierarchy.
// Authorization decisions consult the role only, never the actor id,
// with the single exception of disposition completion (recipient-gated).
type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleChairperson     Role = "CHAIRPERSON"
	RoleBoardSecretary  Role = "BOARD_SECRETARY"
	RoleTreasurer       Role = "TREASURER"
	RoleDeptHeadHR      Role = "DEPT_HEAD_HR"
	RoleDeptHeadFinance Role = "DEPT_HEAD_FINANCE"
	RoleDeptHeadGeneral Role = "DEPT_HEAD_GENERAL"
)

var validRoles = map[Role]bool{
	RoleAdmin:           true,
	RoleChairperson:     true,
	RoleBoardSecretary:  true,
	RoleTreasurer:       true,
	RoleDeptHeadHR:      true,
	RoleDeptHeadFinance: true,
	RoleDeptHeadGeneral: true,
}

// positionLabels maps each role to the position name recorded verbatim in
// tracking entries. The snapshot is denormalized on purpose: renaming a
// position later must not rewrite history.
var positionLabels = map[Role]string{
	RoleAdmin:           "Sekretaris Kantor",
	RoleChairperson:     "Ketua Yayasan",
	RoleBoardSecretary:  "Sekretaris Pengurus",
	RoleTreasurer:       "Bendahara",
	RoleDeptHeadHR:      "Kepala Bagian PSDM",
	RoleDeptHeadFinance: "Kepala Bagian Keuangan",
	RoleDeptHeadGeneral: "Kepala Bagian Umum",
}

// IsValid returns true if the role is a member of the closed role set
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsDeptHead returns true for any of the department-head roles
func (r Role) IsDeptHead() bool {
	return r == RoleDeptHeadHR || r == RoleDeptHeadFinance || r == RoleDeptHeadGeneral
}

// PositionLabel returns the human-readable position name for the role
func (r Role) PositionLabel() string {
	if label, ok := positionLabels[r]; ok {
		return label
	}
	return string(r)
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

package institute

// DefaultConfigType is used when a request names no config type.
const DefaultConfigType = "default"

// Settings is the institute configuration for one config type. At most one session is active.
type Settings struct {
	ConfigType     string    `json:"configType"`
	ActiveSemester string    `json:"activeSemester"`
	AcademicYear   string    `json:"academicYear"`
	InstituteName  string    `json:"instituteName"`
	Sessions       []Session `json:"sessions"`
}

type Session struct {
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// Active returns the active session name, or "".
func (s Settings) Active() string {
	for _, sess := range s.Sessions {
		if sess.IsActive {
			return sess.Name
		}
	}
	return ""
}

type SettingsInput struct {
	ConfigType     string `json:"configType"`
	ActiveSemester string `json:"activeSemester"`
	AcademicYear   string `json:"academicYear"`
	InstituteName  string `json:"instituteName" binding:"required"`
}

type SessionInput struct {
	ConfigType string `json:"configType"`
	Name       string `json:"name" binding:"required,academic_session"`
	Active     bool   `json:"isActive"`
}

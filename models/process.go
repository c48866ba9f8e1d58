package models

// ProcessRecord is a process listening on a local TCP port. There is one
// record per listening socket, so a process listening on several ports yields
// several records.
//
// All fields are plain strings and are never absent; values that couldn't be
// retrieved are empty.
type ProcessRecord struct {
	Name      string `json:"name"`
	PID       string `json:"pid"`
	Port      string `json:"port"`
	Directory string `json:"directory"`
	Command   string `json:"command"`
}

// Fields returns the record values in a fixed order: name, pid, port,
// directory and command.
func (r ProcessRecord) Fields() [5]string {
	return [5]string{r.Name, r.PID, r.Port, r.Directory, r.Command}
}

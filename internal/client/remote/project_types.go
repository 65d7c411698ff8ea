package remote

// Project is the remote project metadata relevant to sync validation.
// An empty Format means the project is client-agnostic.
type Project struct {
	Name            string `json:"name"`
	Format          string `json:"format"`
	DefaultLanguage string `json:"defaultLanguage"`
}

// File is one remote resource file as served by the project API.
// Hash is an opaque content digest computed server-side with the same
// algorithm the client scanner uses.
type File struct {
	Path    string `json:"path"`
	Hash    string `json:"hash"`
	Content []byte `json:"content,omitempty"`
}

// ProjectConfig is the serialized project configuration stored remotely,
// compared byte-for-byte against the local config during conflict checks.
type ProjectConfig struct {
	Raw []byte `json:"raw"`
}

type listFilesResponse struct {
	Files []*File `json:"files"`
}

type uploadFilesRequest struct {
	Files []*File `json:"files"`
}

type deleteFilesRequest struct {
	Paths []string `json:"paths"`
}

package domain

import "time"

// Entities mirroring the academic backend's master-data API. The gateway
// does not persist any of these; it proxies and normalizes.

// Division is an organizational unit users belong to.
type Division struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Religion is a master-data lookup value.
type Religion struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EducationLevel is a master-data lookup value (SD..S3, PROF).
type EducationLevel struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// StudyProgram is a program of study (prodi).
type StudyProgram struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Concentration is a specialization within a study program
// (konsentrasi utama).
type Concentration struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	ProdiID   int64  `json:"prodi_id"`
	ProdiName string `json:"prodi_name,omitempty"`
}

// Student is a mahasiswa record. BirthplaceID references a village-level
// region; the full path is reconstructed on demand via the region path
// endpoint.
type Student struct {
	ID            int64  `json:"id"`
	NIM           string `json:"nim"`
	Name          string `json:"nama_mahasiswa"`
	BirthplaceID  *int64 `json:"tempat_lahir,omitempty"`
	Address       string `json:"alamat,omitempty"`
	BirthDate     string `json:"tgl_lahir,omitempty"`
	EntryYear     int    `json:"tahun_masuk"`
	Gender        string `json:"jk"`
	ProdiID       int64  `json:"prodi"`
	ProdiName     string `json:"prodi_name,omitempty"`
	KonsentrasiID *int64 `json:"konsentrasi,omitempty"`
	ThesisTitle   string `json:"judul_skripsi,omitempty"`
}

// Lecturer is a dosen record, keyed upstream by NIDN.
type Lecturer struct {
	NIDN          string `json:"nidn"`
	Code          string `json:"kode_dosen"`
	Name          string `json:"nama_dosen"`
	NIP           string `json:"nip,omitempty"`
	FrontTitle    string `json:"gelar_depan,omitempty"`
	BackTitle     string `json:"gelar_belakang,omitempty"`
	Gender        string `json:"jk"`
	BirthplaceID  *int64 `json:"tempat_lahir,omitempty"`
	BirthDate     string `json:"tgl_lahir,omitempty"`
	ProdiID       int64  `json:"prodi"`
	KonsentrasiID *int64 `json:"konsentrasi,omitempty"`
	ActiveStatus  string `json:"status_aktif"`
	Position      string `json:"jabatan_fungsional,omitempty"`
}

// Supervision is a bimbingan assignment linking a lecturer and a student.
type Supervision struct {
	ID           int64     `json:"id"`
	LecturerNIDN string    `json:"dosen"`
	LecturerName string    `json:"nama_dosen"`
	StudentID    int64     `json:"mahasiswa"`
	StudentNIM   string    `json:"nim"`
	StudentName  string    `json:"nama_mahasiswa"`
	ProposalID   *int64    `json:"proposal,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UploadSummary is the normalized result of a bulk CSV/XLSX upload:
// row counts plus per-row error messages, never an opaque pass/fail.
type UploadSummary struct {
	Message string   `json:"message"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

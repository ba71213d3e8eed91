package dto

import "github.com/mgc/inscriptions/internal/app/models"

// CreateStudentRequest carries the submitted form fields. Every field except
// NomComplet is optional and stored verbatim.
type CreateStudentRequest struct {
	NomComplet    string `json:"nomComplet"`
	Telephone     string `json:"telephone"`
	DateNaissance string `json:"dateNaissance"`
	Adresse       string `json:"adresse"`
	Eglise        string `json:"eglise"`
	Profession    string `json:"profession"`
	Option        string `json:"option"`

	IDApp       string `json:"idApp"`
	NomTree     string `json:"nomTree"`
	TelTree     string `json:"telTree"`
	Liaison     string `json:"liaison"`
	Departement string `json:"departement"`
}

// CreateStudentResponse is returned on a successful registration.
type CreateStudentResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// FailureResponse is the generic failure envelope for the create endpoint.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CheckDuplicatesRequest carries the advisory duplicate-check criteria.
type CheckDuplicatesRequest struct {
	NomComplet string `json:"nomComplet"`
	Telephone  string `json:"telephone"`
}

// CheckDuplicatesResponse lists candidate records matching the criteria.
type CheckDuplicatesResponse struct {
	Found      bool              `json:"found"`
	Candidates []*models.Student `json:"candidates"`
}

// AdminErrorResponse is returned when the admin password does not match.
type AdminErrorResponse struct {
	Error string `json:"error"`
}

package domain

// ClientRole differentiates what an API client may do.
type ClientRole string

const (
	ClientRoleViewer   ClientRole = "VIEWER"
	ClientRoleOperator ClientRole = "OPERATOR"
)

// APIClient is a configured machine caller of the report API.
type APIClient struct {
	ID         string
	Role       ClientRole
	SecretHash string
}

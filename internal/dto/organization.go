package dto

import "github.com/hotelprocure/procure/internal/entity"

// BranchResponse is a branch with its organization.
type BranchResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	Organization *Ref   `json:"organization,omitempty"`
}

// BranchListResponse lists branches.
type BranchListResponse struct {
	Branches []BranchResponse `json:"branches"`
}

// BrandingResponse is the organization's visual identity.
type BrandingResponse struct {
	Name           string `json:"name"`
	Logo           string `json:"logo,omitempty"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	Domain         string `json:"domain,omitempty"`
}

// NewBranchResponse maps a branch.
func NewBranchResponse(b *entity.Branch) BranchResponse {
	resp := BranchResponse{ID: b.ID, Name: b.Name, Address: b.Address}
	if b.Organization != nil {
		resp.Organization = &Ref{ID: b.Organization.ID, Name: b.Organization.Name}
	}
	return resp
}

// NewBranchListResponse maps branches.
func NewBranchListResponse(branches []*entity.Branch) BranchListResponse {
	out := BranchListResponse{Branches: make([]BranchResponse, 0, len(branches))}
	for _, b := range branches {
		out.Branches = append(out.Branches, NewBranchResponse(b))
	}
	return out
}

// NewBrandingResponse maps an organization's branding.
func NewBrandingResponse(o *entity.Organization) BrandingResponse {
	return BrandingResponse{
		Name:           o.Name,
		Logo:           o.Logo,
		PrimaryColor:   o.PrimaryColor,
		SecondaryColor: o.SecondaryColor,
		Domain:         o.Domain,
	}
}

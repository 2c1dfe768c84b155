package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ergolife/storefront/internal/domain/user"
)

// ListAddresses returns the caller's addresses.
func (h *Handler) ListAddresses(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	addrs, err := h.addresses.List(c.Request.Context(), id.UserID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if addrs == nil {
		addrs = []user.Address{}
	}
	respondItems(c, http.StatusOK, addrs)
}

// GetAddress returns one of the caller's addresses by id.
func (h *Handler) GetAddress(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	addr, err := h.addresses.Get(c.Request.Context(), id.UserID, c.Param("addressId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusOK, addr)
}

type addressRequest struct {
	BuildingNo    string `json:"buildingNo"`
	Detail        string `json:"detail"`
	Postcode      string `json:"postcode"`
	SubdistrictID string `json:"subdistrictId"`
	DistrictID    string `json:"districtId"`
	ProvinceID    string `json:"provinceId"`
	IsDefault     bool   `json:"isDefault"`
}

// CreateAddress adds an address to the caller's profile.
func (h *Handler) CreateAddress(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	addr, err := h.addresses.Create(c.Request.Context(), id.UserID, user.AddressInput{
		BuildingNo:    req.BuildingNo,
		Detail:        req.Detail,
		Postcode:      req.Postcode,
		SubdistrictID: req.SubdistrictID,
		DistrictID:    req.DistrictID,
		ProvinceID:    req.ProvinceID,
		IsDefault:     req.IsDefault,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusCreated, addr)
}

type addressPatchRequest struct {
	BuildingNo    *string `json:"buildingNo"`
	Detail        *string `json:"detail"`
	Postcode      *string `json:"postcode"`
	SubdistrictID *string `json:"subdistrictId"`
	DistrictID    *string `json:"districtId"`
	ProvinceID    *string `json:"provinceId"`
	IsDefault     *bool   `json:"isDefault"`
}

// UpdateAddress applies a partial patch to one of the caller's addresses.
func (h *Handler) UpdateAddress(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	var req addressPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	addr, err := h.addresses.Update(c.Request.Context(), id.UserID, c.Param("addressId"), user.AddressPatch{
		BuildingNo:    req.BuildingNo,
		Detail:        req.Detail,
		Postcode:      req.Postcode,
		SubdistrictID: req.SubdistrictID,
		DistrictID:    req.DistrictID,
		ProvinceID:    req.ProvinceID,
		IsDefault:     req.IsDefault,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusOK, addr)
}

// DeleteAddress removes one of the caller's addresses. When the deleted
// address was the default, the response carries the promoted address id.
func (h *Handler) DeleteAddress(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	newDefaultID, err := h.addresses.Delete(c.Request.Context(), id.UserID, c.Param("addressId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	body := gin.H{"success": true}
	if newDefaultID != "" {
		body["newDefaultAddressId"] = newDefaultID
	}
	c.JSON(http.StatusOK, body)
}

// SelectDefaultAddress marks one of the caller's addresses as the default.
func (h *Handler) SelectDefaultAddress(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	addr, err := h.addresses.SelectDefault(c.Request.Context(), id.UserID, c.Param("addressId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusOK, addr)
}

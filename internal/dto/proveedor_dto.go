package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProveedorRequest struct {
	RazonSocial   string  `json:"razon_social"   validate:"required,min=2"`
	CUIT          string  `json:"cuit"           validate:"required"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Direccion     *string `json:"direccion"`
	CondicionPago *string `json:"condicion_pago"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProveedorResponse struct {
	ID            string  `json:"id"`
	RazonSocial   string  `json:"razon_social"`
	CUIT          string  `json:"cuit"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email"`
	Direccion     *string `json:"direccion"`
	CondicionPago *string `json:"condicion_pago"`
	Activo        bool    `json:"activo"`
}

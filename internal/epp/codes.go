package epp

// EPP result codes (RFC 5730 §3) that the registrar reasons about.
// Anything else is surfaced opaquely through RegistryError.
const (
	CodeCompletedSuccessfully  = 1000
	CodeCompletedActionPending = 1001
	CodeCompletedNoMessages    = 1300
	CodeCompletedAckToDequeue  = 1301
	CodeCompletedEndingSession = 1500

	CodeUnknownCommand     = 2011
	CodeObjectExists       = 2302
	CodeObjectDoesNotExist = 2303
	CodeStatusProhibits    = 2304
	CodeParameterPolicy    = 2306
	CodeCommandFailed      = 2400
)

// Domain status values (RFC 5731 §2.3).
const (
	StatusClientDeleteProhibited   = "clientDeleteProhibited"
	StatusServerDeleteProhibited   = "serverDeleteProhibited"
	StatusClientHold               = "clientHold"
	StatusServerHold               = "serverHold"
	StatusClientRenewProhibited    = "clientRenewProhibited"
	StatusServerRenewProhibited    = "serverRenewProhibited"
	StatusClientTransferProhibited = "clientTransferProhibited"
	StatusServerTransferProhibited = "serverTransferProhibited"
	StatusClientUpdateProhibited   = "clientUpdateProhibited"
	StatusServerUpdateProhibited   = "serverUpdateProhibited"
	StatusInactive                 = "inactive"
	StatusOK                       = "ok"
	StatusPendingCreate            = "pendingCreate"
	StatusPendingDelete            = "pendingDelete"
	StatusPendingRenew             = "pendingRenew"
	StatusPendingTransfer          = "pendingTransfer"
	StatusPendingUpdate            = "pendingUpdate"
)

// success reports whether an EPP result code is a positive completion.
func success(code int) bool {
	return code >= 1000 && code < 2000
}

package adjustment

import "errors"

var (
	ErrAdjustmentNotFound   = errors.New("adjustment not found")
	ErrAlreadyDecided       = errors.New("adjustment already approved or rejected")
	ErrSelfApproval         = errors.New("adjustment approver must differ from its creator")
	ErrRejectReasonRequired = errors.New("rejecting an adjustment requires a reason")
)

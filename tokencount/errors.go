package tokencount

import "errors"

// ErrEncodingUnavailable is returned (wrapped) when a named encoding
// cannot be loaded or is not recognized at all — always fatal (spec
// §4.6: "Tokenizer-load failures are always fatal: the selector cannot
// produce a deterministic cost"). The root package's selector maps this
// onto agon.ErrEncodingUnavailable for callers that classify with
// errors.Is against the public taxonomy.
var ErrEncodingUnavailable = errors.New("tokencount: encoding unavailable")

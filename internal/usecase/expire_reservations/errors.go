package expire_reservations

import "errors"

// ErrInternal возвращается при внутренних ошибках
var ErrInternal = errors.New("internal error")

package constants

// ユーザーロール
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// お菓子のカテゴリ
const (
	CategoryChocolate = "chocolate"
	CategoryCandy     = "candy"
	CategoryGummy     = "gummy"
	CategoryLollipop  = "lollipop"
	CategoryHardCandy = "hard-candy"
	CategoryOther     = "other"
)

var Categories = []string{
	CategoryChocolate,
	CategoryCandy,
	CategoryGummy,
	CategoryLollipop,
	CategoryHardCandy,
	CategoryOther,
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// 在庫
const (
	DefaultLowStockThreshold = 10
	MaxPageLimit             = 100
)

// エラーメッセージ
const (
	ErrSweetNotFound       = "Sweet not found"
	ErrUnexpected          = "Unexpected error"
	ErrInvalidInput        = "Invalid input"
	ErrInvalidQuantity     = "Please provide a valid quantity"
	ErrInsufficientStock   = "Insufficient quantity in stock"
	ErrUserExists          = "User already exists"
	ErrSweetExists         = "Sweet with this name already exists"
	ErrInvalidCredentials  = "Invalid credentials"
	ErrNotAuthorized       = "Not authorized, token failed"
	ErrForbidden           = "You do not have permission to perform this action"
	ErrMissingCredentials  = "Please provide email and password"
	ErrAuthHeaderRequired  = "Authorization header is required"
	ErrInvalidHeaderFormat = "Invalid authorization header format"
)

// 成功メッセージ
const (
	MsgPurchaseSuccessful = "Purchase successful"
	MsgRestockSuccessful  = "Restock successful"
	MsgSweetDeleted       = "Sweet deleted successfully"
	MsgLoggedOut          = "Successfully logged out"
	MsgServerRunning      = "Server is running"
)

// gin.Context のキー
const (
	ContextUserKey  = "user"
	ContextTokenKey = "token"
)

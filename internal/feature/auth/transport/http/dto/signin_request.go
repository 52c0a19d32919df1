package dto

// SigninReq は/auth/signinエンドポイントのリクエストボディを表します。
// パスワードの長さはここでは検証しません（登録済みユーザーの判別材料になるため）。
type SigninReq struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=256"`
}

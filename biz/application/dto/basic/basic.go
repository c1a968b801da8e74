package basic

type PaginationOptions struct {
	Page      *int64  `form:"page" json:"page" query:"page"`
	Limit     *int64  `form:"limit" json:"limit" query:"limit"`
	Backward  *bool   `form:"backward" json:"backward" query:"backward"`
	LastToken *string `form:"lastToken" json:"lastToken" query:"lastToken"`
}

// UserMeta 从JWT中解析出的用户信息
type UserMeta struct {
	UserId          string `json:"userId"`
	AppId           int64  `json:"appId"`
	DeviceId        string `json:"deviceId"`
	SessionUserId   string `json:"sessionUserId"`
	SessionAppId    int64  `json:"sessionAppId"`
	SessionDeviceId string `json:"sessionDeviceId"`
}

func (u *UserMeta) GetUserId() string {
	if u == nil {
		return ""
	}
	return u.UserId
}

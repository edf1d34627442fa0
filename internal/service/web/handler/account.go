package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/form"
	"github.com/solutions/prep-cube/internal/protodef/model"
)

type AccountInterface interface {
	// GetAccountByEmail 通过邮箱查询账号
	GetAccountByEmail(xl *xlog.Logger, email string) (*model.AccountDo, error)

	GetAccountByID(xl *xlog.Logger, id string) (*model.AccountDo, error)

	CreateAccount(xl *xlog.Logger, account *model.AccountDo) error

	UpdateAccount(xl *xlog.Logger, id string, account *model.AccountDo) (*model.AccountDo, error)

	AccountLogin(xl *xlog.Logger, id string) (user *model.AccountTokenDo, err error)

	AccountLogout(xl *xlog.Logger, id string) error
}

type AccountApiHandler struct {
	Account AccountInterface
}

func newUserInfoResponse(account *model.AccountDo) model.UserInfoResponse {
	return model.UserInfoResponse{
		ID:                account.ID,
		Nickname:          account.Nickname,
		Email:             account.Email,
		Plan:              string(account.Plan),
		EmailNotification: account.EmailNotification,
	}
}

// SignUpOrIn 邮箱登录，账号不存在时自动注册。
func (h *AccountApiHandler) SignUpOrIn(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	args := form.SignUpOrInForm{}
	if err := c.Bind(&args); err != nil {
		xl.Infof("SignUpOrIn: invalid args in body, error %v", err)
		failBadRequest(c, xl)
		return
	}
	if err := args.Validate(); err != nil {
		failValidation(c, xl, err)
		return
	}

	account, err := h.Account.GetAccountByEmail(xl, args.Email)
	if err != nil {
		if err != mgo.ErrNotFound {
			failWith(c, xl, err)
			return
		}
		// 自动注册。
		account = &model.AccountDo{
			ID:                utils.GenerateID(),
			Email:             args.Email,
			Salt:              utils.GenerateID(),
			Nickname:          args.Nickname,
			Plan:              model.PlanCodeFree,
			EmailNotification: true,
			RegisterIP:        c.ClientIP(),
		}
		account.Password = account.HashPassword(args.Password)
		if account.Nickname == "" {
			account.Nickname = generateNicknameByEmail(args.Email)
		}
		if err := h.Account.CreateAccount(xl, account); err != nil {
			failWith(c, xl, err)
			return
		}
		xl.Infof("new account %s registered with email %s", account.ID, account.Email)
	} else if account.HashPassword(args.Password) != account.Password {
		xl.Infof("SignUpOrIn: wrong password for %s", args.Email)
		model.NewFailResponse(*model.NewResponseErrorWrongPassword()).WithRequestID(xl.ReqId).Send(c)
		return
	}

	tokenRecord, err := h.Account.AccountLogin(xl, account.ID)
	if err != nil {
		xl.Errorf("failed to login account %s, error %v", account.ID, err)
		failWith(c, xl, err)
		return
	}
	succeed(c, xl, model.SignUpOrInResponse{
		UserInfoResponse: newUserInfoResponse(account),
		Token:            tokenRecord.Token,
	})
}

// user_ + 邮箱@前的最后4个字符
func generateNicknameByEmail(email string) string {
	namePrefix := "user_"
	local := email
	for index, char := range email {
		if char == '@' {
			local = email[:index]
			break
		}
	}
	if len(local) < 4 {
		return namePrefix + local
	}
	return namePrefix + local[len(local)-4:]
}

// GetAccountInfo 当前用户信息。
func (h *AccountApiHandler) GetAccountInfo(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	succeed(c, xl, newUserInfoResponse(&account))
}

// UpdateAccountInfo 更新昵称与通知开关。
func (h *AccountApiHandler) UpdateAccountInfo(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	args := form.UpdateProfileForm{}
	if err := c.Bind(&args); err != nil {
		failBadRequest(c, xl)
		return
	}
	if err := args.Validate(); err != nil {
		failValidation(c, xl, err)
		return
	}
	updated := model.AccountDo{
		Nickname:          args.Nickname,
		EmailNotification: account.EmailNotification,
	}
	if args.EmailNotification != nil {
		updated.EmailNotification = *args.EmailNotification
	}
	result, err := h.Account.UpdateAccount(xl, account.ID, &updated)
	if err != nil {
		failWith(c, xl, err)
		return
	}
	succeed(c, xl, newUserInfoResponse(result))
}

// SignOut 退出登录。
func (h *AccountApiHandler) SignOut(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	if err := h.Account.AccountLogout(xl, account.ID); err != nil {
		failWith(c, xl, err)
		return
	}
	succeed(c, xl, nil)
}

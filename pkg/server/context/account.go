/* Copyright 2025 Tasknest Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package context

import (
	"context"

	"github.com/tasknest/tasknest/pkg/server/database"
)

const accountKey privateKey = "account"

type privateKey string

// WithAccount creates a new context with the given account
func WithAccount(ctx context.Context, account *database.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// Account retrieves an account from the given context. It returns a pointer
// to an account. If the context does not contain an account, it returns nil.
func Account(ctx context.Context) *database.Account {
	if temp := ctx.Value(accountKey); temp != nil {
		if account, ok := temp.(*database.Account); ok {
			return account
		}
	}

	return nil
}

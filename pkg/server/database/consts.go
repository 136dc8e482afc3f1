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

package database

const (
	// TokenTypeEmailVerification is a type of a token for verifying an email address
	TokenTypeEmailVerification = "email_verification"
	// TokenTypeResetPassword is a type of a token for resetting password
	TokenTypeResetPassword = "reset_password"
)

const (
	// TierFreemium is the name of the free subscription tier
	TierFreemium = "FREEMIUM"
	// TierPremium is the name of the paid subscription tier
	TierPremium = "PREMIUM"
)

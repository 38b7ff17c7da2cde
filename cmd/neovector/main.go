/*
 * @author: Sun977
 * @date: 2026.08.12
 * @description: NeoVector 程序入口
 */

package main

func main() {
	Execute()
}
